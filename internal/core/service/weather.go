package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"devdash/internal/core/domain"
	"devdash/internal/core/port"
	"devdash/internal/core/search"
	"devdash/internal/core/telemetry"
)

const DefaultWeatherTTL = 10 * time.Minute

type WeatherService struct {
	provider port.WeatherProvider
	cache    port.CacheRepository
	metrics  *telemetry.AppMetrics
	ttl      time.Duration
}

// NewWeatherService builds the service. cache may be nil to disable caching.
func NewWeatherService(provider port.WeatherProvider, cache port.CacheRepository, metrics *telemetry.AppMetrics, ttl time.Duration) *WeatherService {
	if ttl <= 0 {
		ttl = DefaultWeatherTTL
	}

	return &WeatherService{
		provider: provider,
		cache:    cache,
		metrics:  metrics,
		ttl:      ttl,
	}
}

func (ws *WeatherService) Fetch(ctx context.Context, city string) (domain.WeatherReport, error) {
	city = strings.TrimSpace(city)

	if city == "" {
		return domain.WeatherReport{}, domain.ErrEmptyCity
	}

	key := weatherCacheKey(city)

	if report, ok := ws.cached(ctx, key); ok {
		return report, nil
	}

	start := time.Now()
	report, err := ws.provider.Current(ctx, city)
	duration := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			ws.metrics.RecordWeatherFetch(ctx, "canceled", duration)
		case errors.Is(err, domain.ErrCityNotFound):
			ws.metrics.RecordWeatherFetch(ctx, "not_found", duration)
		default:
			ws.metrics.RecordWeatherFetch(ctx, "error", duration)
			slog.Error("Weather fetch failed", "city", city, "error", err)
		}

		return domain.WeatherReport{}, err
	}

	ws.metrics.RecordWeatherFetch(ctx, "ok", duration)
	ws.store(ctx, key, report)

	return report, nil
}

func (ws *WeatherService) cached(ctx context.Context, key string) (domain.WeatherReport, bool) {
	var report domain.WeatherReport

	if ws.cache == nil {
		return report, false
	}

	data, err := ws.cache.Get(ctx, key)

	if err != nil {
		slog.Warn("Weather cache read failed", "key", key, "error", err)
		return report, false
	}

	if data == nil {
		ws.metrics.RecordCacheMiss(ctx, "weather")
		return report, false
	}

	if err := json.Unmarshal(data, &report); err != nil {
		slog.Warn("Weather cache entry corrupt", "key", key, "error", err)
		return report, false
	}

	ws.metrics.RecordCacheHit(ctx, "weather")

	return report, true
}

func (ws *WeatherService) store(ctx context.Context, key string, report domain.WeatherReport) {
	if ws.cache == nil {
		return
	}

	data, err := json.Marshal(report)

	if err != nil {
		return
	}

	if err := ws.cache.Set(ctx, key, data, ws.ttl); err != nil {
		slog.Warn("Weather cache write failed", "key", key, "error", err)
	}
}

func weatherCacheKey(city string) string {
	return "weather:" + search.Normalize(city)
}
