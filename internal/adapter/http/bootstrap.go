package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"devdash/internal/adapter/http/routes"
	adaptertelemetry "devdash/internal/adapter/telemetry"
	"devdash/internal/core/telemetry"
	"devdash/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// Run starts telemetry and the API server and blocks until ctx is done.
func Run(ctx context.Context, cfg *config.AppConfig, logger *config.LokiLogger, version string) error {
	tel, err := adaptertelemetry.NewContainer(ctx, adaptertelemetry.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.Telemetry.MetricsPort,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, logger.Zap())

	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx)

	return StartServer(ctx, cfg, tel.AppMetrics, logger)
}

// StartServer serves until ctx is canceled, then drains in-flight requests.
func StartServer(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger) error {
	container, err := NewContainer(ctx, cfg, metrics, logger)

	if err != nil {
		return err
	}

	defer container.Close()

	router := routes.SetupRouterWithConfig(container.Handlers(), metrics, logger, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Long-polled weather sessions hold a response open for up to 30s.
		WriteTimeout: 45 * time.Second,
	}

	logger.Logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Logger.Error("Server failed to start", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	logger.Logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
