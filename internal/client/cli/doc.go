// Package cli provides the interactive meetscribe terminal client.
//
// It wires configuration, the local credential database, the API client, the
// session container and the route guard, then runs a REPL whose views are
// route paths (/dashboard, /transcriptions/{id}, /admin/users, ...). Every
// view goes through the guard first, so an anonymous user asking for a
// protected view lands on /login and a user asking for the admin area lands
// on their own dashboard.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and the view table in views.go for details.
package cli
