package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigFile = "devdash.toml"
	DefaultEnvFile    = ".env"
	ConfigPathEnv     = "DEVDASH_CONFIG"
)

type AppConfig struct {
	AppName     string `toml:"app_name"`
	Port        string `toml:"port"`
	Environment string `toml:"environment"`

	Database  DatabaseConfig  `toml:"database"`
	Weather   WeatherConfig   `toml:"weather"`
	Cache     CacheConfig     `toml:"cache"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	RateLimitEnabled bool                       `toml:"rate_limit_enabled"`
	RateLimitConfigs map[string]RateLimitConfig `toml:"rate_limits"`

	EnforceHTTPS bool   `toml:"enforce_https"`
	CursorSecret string `toml:"cursor_secret"`
	LokiURL      string `toml:"loki_url"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
	SQLLog bool   `toml:"sql_log"`
}

type WeatherConfig struct {
	APIKey      string        `toml:"api_key"`
	BaseURL     string        `toml:"base_url"`
	DefaultCity string        `toml:"default_city"`
	Timeout     time.Duration `toml:"timeout"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
	Debounce    time.Duration `toml:"debounce"`
	SessionIdle time.Duration `toml:"session_idle"`
	// RatePerMinute caps outbound calls to the weather API.
	RatePerMinute int `toml:"rate_per_minute"`
}

type CacheConfig struct {
	// Backend is memory or redis.
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	MetricsPort  string `toml:"metrics_port"`
}

type RateLimitConfig struct {
	Requests int           `toml:"requests"`
	Window   time.Duration `toml:"window"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		AppName:     "devdash",
		Port:        "8080",
		Environment: "development",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "devdash.db",
		},
		Weather: WeatherConfig{
			BaseURL:       "https://api.openweathermap.org",
			DefaultCity:   "London",
			Timeout:       10 * time.Second,
			CacheTTL:      10 * time.Minute,
			Debounce:      500 * time.Millisecond,
			SessionIdle:   15 * time.Minute,
			RatePerMinute: 60,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			MetricsPort: "9090",
		},
		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /api/tasks": {
				Requests: 30,
				Window:   time.Minute,
			},
			"POST /api/tasks/import": {
				Requests: 5,
				Window:   time.Minute,
			},
			"GET /api/weather": {
				Requests: 30,
				Window:   time.Minute,
			},
			"default": {
				Requests: 120,
				Window:   time.Minute,
			},
		},
		EnforceHTTPS: false,
		CursorSecret: "devdash-cursor",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// DEVDASH_CONFIG (or devdash.toml when present), then .env, then the
// process environment.
func Load() (*AppConfig, error) {
	cfg := GetDefaultConfig()

	path := os.Getenv(ConfigPathEnv)
	required := path != ""

	if path == "" {
		path = DefaultConfigFile
	}

	if err := loadConfigFile(cfg, path); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(cfg *AppConfig, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *AppConfig) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	var errs []error

	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	setString("APP_NAME", &cfg.AppName)
	setString("PORT", &cfg.Port)
	setString("APP_ENV", &cfg.Environment)

	setString("DATABASE_DRIVER", &cfg.Database.Driver)
	setString("DATABASE_URL", &cfg.Database.DSN)
	setString("DATABASE_PATH", &cfg.Database.DSN)
	setBool("SQL_LOG", &cfg.Database.SQLLog)

	setString("OPENWEATHER_API_KEY", &cfg.Weather.APIKey)
	setString("OPENWEATHER_BASE_URL", &cfg.Weather.BaseURL)
	setString("WEATHER_DEFAULT_CITY", &cfg.Weather.DefaultCity)
	setDuration("WEATHER_TIMEOUT", &cfg.Weather.Timeout)
	setDuration("WEATHER_CACHE_TTL", &cfg.Weather.CacheTTL)
	setDuration("WEATHER_DEBOUNCE", &cfg.Weather.Debounce)
	setDuration("WEATHER_SESSION_IDLE", &cfg.Weather.SessionIdle)
	setInt("WEATHER_RATE_PER_MINUTE", &cfg.Weather.RatePerMinute)

	setString("CACHE_BACKEND", &cfg.Cache.Backend)
	setString("REDIS_ADDR", &cfg.Cache.RedisAddr)

	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)
	setString("METRICS_PORT", &cfg.Telemetry.MetricsPort)

	setBool("RATE_LIMIT_ENABLED", &cfg.RateLimitEnabled)
	setBool("ENFORCE_HTTPS", &cfg.EnforceHTTPS)
	setString("CURSOR_SECRET", &cfg.CursorSecret)
	setString("LOKI_URL", &cfg.LokiURL)

	if os.Getenv("GIN_MODE") == "release" && os.Getenv("ENFORCE_HTTPS") == "" {
		cfg.EnforceHTTPS = true
	}

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)

	return errors.Join(errs...)
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
