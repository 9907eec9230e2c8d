package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/config"
	"github.com/dmitrijs2005/meetscribe/internal/client/credentials"
	"github.com/dmitrijs2005/meetscribe/internal/client/guard"
	"github.com/dmitrijs2005/meetscribe/internal/client/services"
	"github.com/dmitrijs2005/meetscribe/internal/client/session"
	"github.com/dmitrijs2005/meetscribe/internal/filex"
	"github.com/dmitrijs2005/meetscribe/internal/logging"
)

type App struct {
	log     logging.Logger
	db      *sql.DB
	session *session.Container
	routes  *guard.Table
	watcher *guard.Watcher

	transcriptions services.TranscriptionService
	users          services.UserAdminService

	reader *bufio.Reader
	out    io.Writer

	viewMu   sync.Mutex
	lastView string
}

// NewApp opens the local database under c.DataDir and wires the API client,
// the session container and the route guard. The session is not restored
// until Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, c.DBFile))
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, &http.Client{})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := services.NewAuthService(api, credentials.NewStore(db))
	sess := session.New(auth, log, c.RequestTimeout)

	deadlines := services.Deadlines{Request: c.RequestTimeout, Transfer: c.TransferTimeout}
	a := newApp(sess,
		services.NewTranscriptionService(api, sess, deadlines),
		services.NewUserAdminService(api, sess, deadlines),
		os.Stdin, os.Stdout, log)
	a.db = db
	return a, nil
}

func newApp(sess *session.Container, ts services.TranscriptionService, us services.UserAdminService, in io.Reader, out io.Writer, log logging.Logger) *App {
	a := &App{
		log:            log,
		session:        sess,
		routes:         guard.Routes(),
		transcriptions: ts,
		users:          us,
		reader:         bufio.NewReader(in),
		out:            out,
	}
	a.watcher = guard.NewWatcher(a.routes, sess, a.onViewChange)
	return a
}

// Run restores the session, shows the landing view and runs the REPL until
// the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.printf("Welcome to meetscribe (type 'help' for commands)\n")

	a.session.Bootstrap(ctx)
	if u := a.session.User(); u != nil {
		a.printf("Signed in as %s (%s)\n", u.Email, u.Role)
		_ = a.Go(ctx, guard.Home(u.Role))
	} else {
		_ = a.Go(ctx, "/")
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close releases the watcher and the database.
func (a *App) Close() error {
	a.watcher.Close()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated()
}

func (a *App) isAdmin() bool {
	u := a.session.User()
	return u != nil && u.Role.IsAdmin()
}

func (a *App) status() string {
	path, _ := a.watcher.Current()
	st := a.session.State()

	var b strings.Builder
	if st.User != nil {
		b.WriteString(st.User.Email)
		if st.User.Role.IsAdmin() {
			b.WriteString(" [admin]")
		}
		b.WriteByte(' ')
	}
	b.WriteString(path)
	if st.Loading {
		b.WriteString(" …")
	}
	return b.String()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// setView records path as the view shown to the user and reports whether it
// changed.
func (a *App) setView(path string) bool {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	changed := a.lastView != path
	a.lastView = path
	return changed
}

// onViewChange reacts to session changes that move the current view, e.g.
// a logout while a protected view is open.
func (a *App) onViewChange(path string, d guard.Decision) {
	if d.Kind != guard.Render {
		return
	}
	if a.setView(path) {
		a.printf("→ %s\n", path)
	}
}
