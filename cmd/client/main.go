package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/sidereal-app/sidereal/internal/client/cli"
	"github.com/sidereal-app/sidereal/internal/client/config"
	"github.com/sidereal-app/sidereal/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
