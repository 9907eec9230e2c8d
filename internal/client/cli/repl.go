package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Go(ctx context.Context, path string) error

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GoogleLogin(ctx context.Context) error
	Callback(ctx context.Context, arg string) error
	Verify(ctx context.Context, token string) error
	Resend(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error

	YouTube(ctx context.Context, videoURL string) error
	Upload(ctx context.Context, path string) error
	Rename(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Ask(ctx context.Context, id string) error
	History(ctx context.Context, id string) error
	Quiz(ctx context.Context, id string) error
	PDF(ctx context.Context, id, file string) error

	SetRole(ctx context.Context, id, role string) error
	EditUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

const (
	helpAnonymous = "Commands: go <path>, features, pricing, register, login, google, callback <token|url>, verify <token>, exit"
	helpUser      = "Commands: go <path>, home, list, show <id>, meeting <id>, summary, profile, youtube <url>, upload <file>, rename <id>, delete <id>, ask <id>, history <id>, quiz <id>, pdf <id> [file], resend, refresh, logout, exit"
	helpAdmin     = "Admin: admin, users, user <id>, setrole <id> <user|admin>, edituser <id>, deluser <id>"
)

// readLine reads one trimmed input line. A final line without a newline is
// still returned; ok is false once input is exhausted.
func readLine(in *bufio.Reader) (line string, ok bool) {
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// runREPL starts the read–eval–print loop of the meetscribe CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a'. Navigation commands map to view paths and
// go through the route guard, so a command for a view the session may not
// see ends on the login or home view instead. The loop exits on EOF or when
// the user types "exit" or "quit".
//
// Prompts issued by command handlers read from the same reader, so scripted
// input is consumed in order.
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ms> %s > ", statusFn()))
		line, ok := readLine(in)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}
		need := func(n int, usage string) bool {
			if len(args) < n {
				printlnFn("Usage:", usage)
				return false
			}
			return true
		}

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn(helpUser)
				printlnFn(helpAdmin)
			case a.isLoggedIn():
				printlnFn(helpUser)
			default:
				printlnFn(helpAnonymous)
			}

		// navigation
		case "go", "open":
			if need(1, "go <path>") {
				_ = a.Go(ctx, arg(0))
			}
		case "home", "dashboard":
			_ = a.Go(ctx, "/dashboard")
		case "features", "pricing", "profile", "summary":
			_ = a.Go(ctx, "/"+cmd)
		case "l", "list":
			_ = a.Go(ctx, "/transcriptions")
		case "show":
			if need(1, "show <id>") {
				_ = a.Go(ctx, "/transcriptions/"+arg(0))
			}
		case "meeting":
			if need(1, "meeting <id>") {
				_ = a.Go(ctx, "/meetings/"+arg(0))
			}
		case "admin":
			_ = a.Go(ctx, "/admin/dashboard")
		case "users":
			_ = a.Go(ctx, "/admin/users")
		case "user":
			if need(1, "user <id>") {
				_ = a.Go(ctx, "/admin/users/"+arg(0))
			}

		// session
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "google":
			_ = a.GoogleLogin(ctx)
		case "callback":
			_ = a.Callback(ctx, arg(0))
		case "verify":
			if need(1, "verify <token>") {
				_ = a.Verify(ctx, arg(0))
			}
		case "resend":
			_ = a.Resend(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "logout":
			_ = a.Logout(ctx)

		// transcriptions
		case "youtube":
			if need(1, "youtube <url>") {
				_ = a.YouTube(ctx, arg(0))
			}
		case "upload":
			if need(1, "upload <file>") {
				_ = a.Upload(ctx, strings.Join(args, " "))
			}
		case "rename":
			if need(1, "rename <id>") {
				_ = a.Rename(ctx, arg(0))
			}
		case "delete":
			if need(1, "delete <id>") {
				_ = a.Delete(ctx, arg(0))
			}
		case "ask":
			if need(1, "ask <id>") {
				_ = a.Ask(ctx, arg(0))
			}
		case "history":
			if need(1, "history <id>") {
				_ = a.History(ctx, arg(0))
			}
		case "quiz":
			if need(1, "quiz <id>") {
				_ = a.Quiz(ctx, arg(0))
			}
		case "pdf":
			if need(1, "pdf <id> [file]") {
				_ = a.PDF(ctx, arg(0), arg(1))
			}

		// admin
		case "setrole":
			if need(2, "setrole <id> <user|admin>") {
				_ = a.SetRole(ctx, arg(0), arg(1))
			}
		case "edituser":
			if need(1, "edituser <id>") {
				_ = a.EditUser(ctx, arg(0))
			}
		case "deluser":
			if need(1, "deluser <id>") {
				_ = a.DeleteUser(ctx, arg(0))
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
