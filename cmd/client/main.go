package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mehmet-raif33/ulasfleet/internal/client/cli"
	"github.com/mehmet-raif33/ulasfleet/internal/client/config"
	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "client exited with error", "error", err)
		os.Exit(1)
	}
}
