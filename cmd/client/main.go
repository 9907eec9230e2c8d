package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/meetscribe/internal/client/cli"
	"github.com/dmitrijs2005/meetscribe/internal/client/config"
	"github.com/dmitrijs2005/meetscribe/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Run(ctx)
}
