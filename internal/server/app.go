// Package server wires the development API server: configuration, the
// in-memory user store, the user service and the REST transport, and runs
// them until the process is told to stop.
package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/meetscribe/internal/logging"
	"github.com/dmitrijs2005/meetscribe/internal/server/config"
	"github.com/dmitrijs2005/meetscribe/internal/server/repositories/users"
	"github.com/dmitrijs2005/meetscribe/internal/server/rest"
	"github.com/dmitrijs2005/meetscribe/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *services.UserService
}

// NewApp builds the application, logging JSON lines to w.
func NewApp(c *config.Config, w io.Writer) *App {
	logger := logging.NewJSON(w, c.LogLevel)

	us := services.NewUserService(users.NewMemoryRepository(), c, logger.With("module", "user_service"))

	return &App{config: c, logger: logger, userService: us}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	s := rest.NewServer(app.config.Addr, app.logger, app.userService, rest.Options{
		LoginRateLimit: app.config.LoginRateLimit,
		CallbackURL:    app.config.CallbackURL,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
