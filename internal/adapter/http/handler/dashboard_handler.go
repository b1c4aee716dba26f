package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	. "devdash/internal/adapter/http/helper"
	"devdash/internal/core/domain"
	"devdash/internal/core/model/request"
	"devdash/internal/core/model/response"
	"devdash/internal/core/port"
	"devdash/pkg/config"
)

//go:embed templates/*.html
var templates embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templates, "templates/dashboard.html"))

const dashboardWeatherTimeout = 3 * time.Second

type DashboardHandler struct {
	tasks       port.TaskService
	weather     port.WeatherService
	defaultCity string
	Logger      *config.LokiLogger
}

type dashboardView struct {
	AppName string
	Page    *response.TaskPage
	Stats   response.TaskStats
	Weather response.WeatherPanelResponse
	Year    int
}

func NewDashboardHandler(tasks port.TaskService, weather port.WeatherService, cfg *config.AppConfig, logger *config.LokiLogger) *DashboardHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &DashboardHandler{
		tasks:       tasks,
		weather:     weather,
		defaultCity: cfg.Weather.DefaultCity,
		Logger:      logger,
	}
}

func (d *DashboardHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := d.tasks.List(ctx, request.ListQuery{Limit: 100})

	if err != nil {
		SendInternalError(c, "Error loading tasks")
		return
	}

	stats, err := d.tasks.Stats(ctx)

	if err != nil {
		SendInternalError(c, "Error loading tasks")
		return
	}

	view := dashboardView{
		AppName: "DevDash",
		Page:    page,
		Stats:   stats,
		Weather: response.NewWeatherPanelResponse("", d.weatherPanel(ctx)),
		Year:    d.tasks.Now().Year(),
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	if err := dashboardTemplate.Execute(c.Writer, view); err != nil {
		d.Logger.ErrorWithTrace(ctx, "Failed to render dashboard", zap.Error(err))
	}
}

func (d *DashboardHandler) weatherPanel(ctx context.Context) domain.WeatherPanel {
	if d.weather == nil || d.defaultCity == "" {
		return domain.IdlePanel()
	}

	ctx, cancel := context.WithTimeout(ctx, dashboardWeatherTimeout)
	defer cancel()

	report, err := d.weather.Fetch(ctx, d.defaultCity)

	if err != nil {
		d.Logger.WarnWithTrace(ctx, "Dashboard weather unavailable",
			zap.String("city", d.defaultCity),
			zap.Error(err))

		return domain.FailedPanel(d.defaultCity)
	}

	return domain.ReadyPanel(d.defaultCity, report)
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
