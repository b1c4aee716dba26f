package http

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"devdash/internal/adapter/cache/memory"
	"devdash/internal/adapter/cache/redis"
	"devdash/internal/adapter/database"
	"devdash/internal/adapter/database/postgres"
	"devdash/internal/adapter/database/repository"
	"devdash/internal/adapter/database/sqlite"
	"devdash/internal/adapter/http/handler"
	"devdash/internal/adapter/http/routes"
	"devdash/internal/adapter/http/validation"
	"devdash/internal/adapter/weather/openweather"
	"devdash/internal/core/port"
	"devdash/internal/core/service"
	"devdash/internal/core/telemetry"
	"devdash/pkg/config"
)

type Container struct {
	DB       *database.DB
	Cache    port.CacheRepository
	TaskRepo port.TaskRepository

	TaskService     *service.TaskService
	TransferService *service.TransferService
	WeatherService  *service.WeatherService
	Lookups         *service.LookupRegistry

	TaskHandler      *handler.TaskHandler
	TransferHandler  *handler.TransferHandler
	WeatherHandler   *handler.WeatherHandler
	DashboardHandler *handler.DashboardHandler
}

// OpenDatabase opens the configured driver and applies migrations.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	switch cfg.Driver {
	case "postgres", "postgresql":
		return postgres.Open(ctx, cfg)
	case "", "sqlite", "sqlite3":
		return sqlite.Open(cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func OpenCache(ctx context.Context, cfg config.CacheConfig) (port.CacheRepository, error) {
	switch cfg.Backend {
	case "redis":
		return redis.NewRedisRepository(ctx, cfg.RedisAddr)
	case "", "memory":
		return memory.NewMemoryRepository(time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func NewContainer(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger) (*Container, error) {
	db, err := OpenDatabase(ctx, cfg.Database)

	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cache, err := OpenCache(ctx, cfg.Cache)

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return NewContainerWith(db, cache, cfg, metrics, logger)
}

// NewContainerWith wires services and handlers around an open database and cache.
func NewContainerWith(db *database.DB, cache port.CacheRepository, cfg *config.AppConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger) (*Container, error) {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	taskRepo := repository.NewTaskRepository(db)
	validator := validation.New()

	taskSvc := service.NewTaskService(taskRepo, validator,
		service.WithTaskMetrics(metrics),
		service.WithCursorSecret(cfg.CursorSecret),
	)

	transferSvc, err := service.NewTransferService(taskRepo, validator, metrics)

	if err != nil {
		return nil, err
	}

	if cfg.Weather.APIKey == "" {
		logger.Logger.Warn("OPENWEATHER_API_KEY is not set; weather lookups will fail")
	}

	provider := openweather.NewClient(openweather.Options{
		BaseURL:       cfg.Weather.BaseURL,
		APIKey:        cfg.Weather.APIKey,
		Timeout:       cfg.Weather.Timeout,
		RatePerMinute: cfg.Weather.RatePerMinute,
	})

	weatherSvc := service.NewWeatherService(provider, cache, metrics, cfg.Weather.CacheTTL)
	lookups := service.NewLookupRegistry(weatherSvc, cfg.Weather.Debounce, cfg.Weather.SessionIdle)

	logger.Logger.Info("Container ready",
		zap.String("database", db.Driver),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("default_city", cfg.Weather.DefaultCity))

	return &Container{
		DB:       db,
		Cache:    cache,
		TaskRepo: taskRepo,

		TaskService:     taskSvc,
		TransferService: transferSvc,
		WeatherService:  weatherSvc,
		Lookups:         lookups,

		TaskHandler:      handler.NewTaskHandler(taskSvc, logger),
		TransferHandler:  handler.NewTransferHandler(transferSvc, logger),
		WeatherHandler:   handler.NewWeatherHandler(weatherSvc, lookups, logger),
		DashboardHandler: handler.NewDashboardHandler(taskSvc, weatherSvc, cfg, logger),
	}, nil
}

func (c *Container) Handlers() routes.HandlersConfig {
	return routes.HandlersConfig{
		TaskHandler:      c.TaskHandler,
		TransferHandler:  c.TransferHandler,
		WeatherHandler:   c.WeatherHandler,
		DashboardHandler: c.DashboardHandler,
	}
}

func (c *Container) Close() error {
	if c.Lookups != nil {
		c.Lookups.Close()
	}

	if c.Cache != nil {
		c.Cache.Close()
	}

	return c.DB.Close()
}
