package port

import (
	"context"
	"time"

	"devdash/internal/core/domain"
)

// WeatherProvider calls the upstream weather API.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (domain.WeatherReport, error)
}

type WeatherService interface {
	Fetch(ctx context.Context, city string) (domain.WeatherReport, error)
}

// CacheRepository returns a nil value and nil error on a miss.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
