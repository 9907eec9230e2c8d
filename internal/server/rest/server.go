// Package rest serves the meetscribe REST API for local development and
// end-to-end tests.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/meetscribe/internal/logging"
	"github.com/dmitrijs2005/meetscribe/internal/server/models"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

// UserService is the business logic the handlers call into.
type UserService interface {
	Register(ctx context.Context, name, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, string, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	DemoLogin(ctx context.Context) (*models.User, string, error)
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id, name, email string, role models.Role) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Options are the transport settings taken from the server config.
type Options struct {
	// LoginRateLimit is the number of login attempts per IP per minute.
	LoginRateLimit int
	// CallbackURL receives ?token= at the end of the federated login.
	CallbackURL string
}

type Server struct {
	address      string
	users        UserService
	logger       logging.Logger
	callbackURL  string
	loginLimiter *ipLimiter
	router       chi.Router
}

func NewServer(address string, l logging.Logger, us UserService, opts Options) *Server {
	s := &Server{
		address:      address,
		users:        us,
		logger:       l.With("module", "rest_server"),
		callbackURL:  opts.CallbackURL,
		loginLimiter: newIPLimiter(opts.LoginRateLimit),
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.With(s.loginLimiter.middleware).Post("/login", s.handleLogin)
		r.Get("/verify/{token}", s.handleVerify)
		r.Get("/google", s.handleGoogle)
		r.With(s.authenticate).Get("/profile", s.handleProfile)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.authenticate, requireAdmin)
		r.Get("/", s.handleListUsers)
		r.Get("/{id}", s.handleGetUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.loginLimiter.runSweeper(ctx, sweepInterval)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// callbackTarget appends query to the configured callback URL.
func (s *Server) callbackTarget(query url.Values) (string, error) {
	u, err := url.Parse(s.callbackURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
