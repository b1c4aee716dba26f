package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"devdash/internal/core/domain"
)

const londonBody = `{
  "name": "London",
  "weather": [{"main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": 11.6, "feels_like": 10.2, "humidity": 81}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Current(t *testing.T) {
	RegisterTestingT(t)

	var gotQuery map[string]string

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		Expect(r.URL.Path).To(Equal("/data/2.5/weather"))

		q := r.URL.Query()
		gotQuery = map[string]string{"q": q.Get("q"), "appid": q.Get("appid"), "units": q.Get("units")}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(londonBody))
	})

	client := NewClient(Options{BaseURL: server.URL, APIKey: "secret"})

	report, err := client.Current(context.Background(), "London")

	Expect(err).To(BeNil())
	Expect(gotQuery).To(Equal(map[string]string{"q": "London", "appid": "secret", "units": "metric"}))
	Expect(report.City).To(Equal("London"))
	Expect(report.Condition).To(Equal("Clouds"))
	Expect(report.Description).To(Equal("broken clouds"))
	Expect(report.RoundedTemperature()).To(Equal(12))
	Expect(report.Humidity).To(Equal(81))
	Expect(report.IconURL()).To(Equal("http://openweathermap.org/img/wn/04d@2x.png"))
	Expect(report.FetchedAt.IsZero()).To(BeFalse())
}

func TestClient_CityNotFound(t *testing.T) {
	RegisterTestingT(t)

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := NewClient(Options{BaseURL: server.URL}).Current(context.Background(), "Atlantis")

	Expect(err).To(MatchError(domain.ErrCityNotFound))
}

func TestClient_UpstreamError(t *testing.T) {
	RegisterTestingT(t)

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := NewClient(Options{BaseURL: server.URL}).Current(context.Background(), "London")

	Expect(err).To(MatchError(domain.ErrWeatherUnavailable))
	Expect(err.Error()).To(ContainSubstring("request failed (401)"))
}

func TestClient_NoConditions(t *testing.T) {
	RegisterTestingT(t)

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"London","weather":[],"main":{"temp":1}}`))
	})

	_, err := NewClient(Options{BaseURL: server.URL}).Current(context.Background(), "London")

	Expect(err).To(MatchError(domain.ErrWeatherUnavailable))
}

func TestClient_Canceled(t *testing.T) {
	RegisterTestingT(t)

	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := NewClient(Options{BaseURL: server.URL}).Current(ctx, "London")

	Expect(err).To(MatchError(context.Canceled))
}

func TestClient_RateLimited(t *testing.T) {
	RegisterTestingT(t)

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(londonBody))
	})

	client := NewClient(Options{BaseURL: server.URL, RatePerMinute: 1})

	_, err := client.Current(context.Background(), "London")
	Expect(err).To(BeNil())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Current(ctx, "London")
	Expect(err).To(MatchError(domain.ErrWeatherUnavailable))
}
