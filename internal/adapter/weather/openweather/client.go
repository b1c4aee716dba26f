package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"devdash/internal/core/domain"
	"devdash/internal/core/port"
)

const DefaultBaseURL = "https://api.openweathermap.org"

// Client calls the OpenWeatherMap current weather endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerMinute int
	// Transport defaults to http.DefaultTransport; it is always wrapped
	// with otelhttp.
	Transport http.RoundTripper
}

func NewClient(opts Options) port.WeatherProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	limit := rate.Inf
	burst := 1
	if opts.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RatePerMinute))
		burst = opts.RatePerMinute
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(opts.Transport),
		},
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
}

func (c *Client) Current(ctx context.Context, city string) (domain.WeatherReport, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("%w: %w", domain.ErrWeatherUnavailable, err)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	endpoint := c.baseURL + "/data/2.5/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)

	if err != nil {
		return domain.WeatherReport{}, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return domain.WeatherReport{}, ctx.Err()
		}
		return domain.WeatherReport{}, fmt.Errorf("%w: %w", domain.ErrWeatherUnavailable, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return domain.WeatherReport{}, fmt.Errorf("%w: %q", domain.ErrCityNotFound, city)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return domain.WeatherReport{}, fmt.Errorf("%w: request failed (%d)", domain.ErrWeatherUnavailable, resp.StatusCode)
	}

	var body currentResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("%w: decode: %w", domain.ErrWeatherUnavailable, err)
	}

	if len(body.Weather) == 0 {
		return domain.WeatherReport{}, fmt.Errorf("%w: response has no weather conditions", domain.ErrWeatherUnavailable)
	}

	name := body.Name
	if name == "" {
		name = city
	}

	return domain.WeatherReport{
		City:        name,
		Condition:   body.Weather[0].Main,
		Description: body.Weather[0].Description,
		Icon:        body.Weather[0].Icon,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		FetchedAt:   c.now().UTC(),
	}, nil
}
