package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "devdash/internal/adapter/http/helper"
	"devdash/internal/core/domain"
	"devdash/internal/core/model/request"
	"devdash/internal/core/model/response"
	"devdash/internal/core/port"
	"devdash/internal/core/service"
	"devdash/pkg/config"
	. "devdash/pkg/tracing"
)

const maxSessionWait = 30 * time.Second

type WeatherHandler struct {
	svc      port.WeatherService
	sessions *service.LookupRegistry
	Logger   *config.LokiLogger
}

func NewWeatherHandler(weatherService port.WeatherService, sessions *service.LookupRegistry, logger *config.LokiLogger) *WeatherHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &WeatherHandler{
		svc:      weatherService,
		sessions: sessions,
		Logger:   logger,
	}
}

func (w *WeatherHandler) GetWeather(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.weather.GetWeather", []attribute.KeyValue{
		attribute.String("handler.operation", "GetWeather"),
		attribute.String("weather.city", c.Query("city")),
	})

	defer span.End()

	report, err := w.svc.Fetch(ctx, c.Query("city"))

	if err != nil {
		AddSpanError(span, err)
		w.sendWeatherError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewWeatherResponse(report))
}

func (w *WeatherHandler) CreateSession(c *gin.Context) {
	id, lookup := w.sessions.Create()

	var params request.WeatherInputRequest

	if c.Request.ContentLength > 0 {
		var ok bool

		if params, ok = bindJSON[request.WeatherInputRequest](c); !ok {
			w.sessions.Remove(id)
			return
		}
	}

	if params.City != "" {
		lookup.Input(params.City)
	}

	panel, version := lookup.Snapshot()

	SendSuccess(c, http.StatusCreated, sessionResponse(id, panel, version))
}

// GetSession returns the panel. With ?wait=DURATION it blocks until the
// panel version passes ?version (default: the version seen on arrival) or
// the wait runs out, so clients can long-poll.
func (w *WeatherHandler) GetSession(c *gin.Context) {
	id := c.Param("id")

	lookup, ok := w.lookup(c, id)

	if !ok {
		return
	}

	panel, version := lookup.Snapshot()

	if wait := c.Query("wait"); wait != "" {
		d, err := time.ParseDuration(wait)

		if err != nil || d < 0 {
			SendBadRequestError(c, "wait", "Wait must be a duration such as 5s")
			return
		}

		if d > maxSessionWait {
			d = maxSessionWait
		}

		after := version

		if v := c.Query("version"); v != "" {
			after, err = strconv.ParseUint(v, 10, 64)

			if err != nil {
				SendBadRequestError(c, "version", "Version must be a non-negative integer")
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		panel, version = lookup.Wait(ctx, after)
	}

	SendSuccess(c, http.StatusOK, sessionResponse(id, panel, version))
}

func sessionResponse(id string, panel domain.WeatherPanel, version uint64) response.WeatherPanelResponse {
	resp := response.NewWeatherPanelResponse(id, panel)
	resp.Version = version

	return resp
}

func (w *WeatherHandler) InputSession(c *gin.Context) {
	id := c.Param("id")

	params, ok := w.bindCity(c)

	if !ok {
		return
	}

	lookup, ok := w.lookup(c, id)

	if !ok {
		return
	}

	lookup.Input(params.City)

	panel, version := lookup.Snapshot()

	SendSuccess(c, http.StatusAccepted, sessionResponse(id, panel, version))
}

func (w *WeatherHandler) SearchSession(c *gin.Context) {
	id := c.Param("id")

	params, ok := w.bindCity(c)

	if !ok {
		return
	}

	lookup, ok := w.lookup(c, id)

	if !ok {
		return
	}

	lookup.Search(c.Request.Context(), params.City)
	panel, version := lookup.Snapshot()

	SendSuccess(c, http.StatusOK, sessionResponse(id, panel, version))
}

func (w *WeatherHandler) DeleteSession(c *gin.Context) {
	id := c.Param("id")

	if _, ok := w.lookup(c, id); !ok {
		return
	}

	w.sessions.Remove(id)

	SendSuccess(c, http.StatusOK, nil, "Session closed")
}

func (w *WeatherHandler) lookup(c *gin.Context, id string) (*service.WeatherLookup, bool) {
	lookup, err := w.sessions.Get(id)

	if err != nil {
		SendNotFoundError(c, err.Error())
		return nil, false
	}

	return lookup, true
}

func (w *WeatherHandler) bindCity(c *gin.Context) (request.WeatherInputRequest, bool) {
	return bindJSON[request.WeatherInputRequest](c)
}

func (w *WeatherHandler) sendWeatherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyCity):
		SendBadRequestError(c, "city", "City is required")
	case errors.Is(err, domain.ErrCityNotFound):
		SendNotFoundError(c, domain.MessageWeatherUnavailable)
	default:
		w.Logger.WarnWithTrace(c.Request.Context(), "Weather lookup failed",
			zap.String("city", c.Query("city")),
			zap.Error(err))

		SendUpstreamError(c, domain.MessageWeatherUnavailable)
	}
}
