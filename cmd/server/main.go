package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/meetscribe/internal/server"
	"github.com/dmitrijs2005/meetscribe/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app := server.NewApp(cfg, os.Stdout)
	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
