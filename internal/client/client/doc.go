// Package client contains the client-side building blocks for talking to the
// meetscribe API and for opening the local session database.
//
// # Overview
//
// The package provides:
//  1. The transport contract: AuthClient, TranscriptionClient and
//     AdminClient, combined as Client.
//  2. HTTPClient, a JSON-over-HTTP implementation that attaches bearer tokens
//     and maps HTTP statuses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as sentinel errors matched with errors.Is:
// ErrUnavailable (transport failure or 5xx), ErrUnauthorized (401/403),
// ErrNotFound (404), ErrRejected (other 4xx or success:false) and
// ErrMalformedResponse (a 2xx body missing required fields). Non-2xx answers
// arrive as *APIError carrying the status and the server's message.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call takes a context and
// honors its cancellation and deadline; the client itself sets no timeout.
package client
