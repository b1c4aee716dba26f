package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	api "devdash/internal/adapter/http"
	"devdash/pkg/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := config.NewLokiLogger(cfg.AppName, cfg.LokiURL)

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	if err := api.Run(ctx, cfg, logger, version); err != nil {
		logger.Logger.Error("Server stopped", zap.Error(err))
		os.Exit(1)
	}
}
