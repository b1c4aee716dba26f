package routes

import (
	"github.com/gin-gonic/gin"

	"devdash/internal/adapter/http/handler"
	"devdash/internal/adapter/http/middleware"
	"devdash/internal/core/telemetry"
	"devdash/pkg/config"
)

type HandlersConfig struct {
	TaskHandler      *handler.TaskHandler
	TransferHandler  *handler.TransferHandler
	WeatherHandler   *handler.WeatherHandler
	DashboardHandler *handler.DashboardHandler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupGinMiddleware(router, metrics, logger, cfg)

	registerRoutes(router, handlers)

	return router
}

// SetupRouterForTests skips telemetry, rate limiting and HTTPS redirection.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(middleware.CurrentMiddleware())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	registerRoutes(router, handlers)

	return router
}

func registerRoutes(router *gin.Engine, handlers HandlersConfig) {
	router.GET("/healthz", handler.Healthz)

	if handlers.DashboardHandler != nil {
		router.GET("/", handlers.DashboardHandler.Index)
	}

	api := router.Group("/api")

	if handlers.TaskHandler != nil {
		setupTaskRoutes(api, handlers.TaskHandler, handlers.TransferHandler)
	}

	if handlers.WeatherHandler != nil {
		setupWeatherRoutes(api, handlers.WeatherHandler)
	}
}

func setupTaskRoutes(api *gin.RouterGroup, taskHandler *handler.TaskHandler, transferHandler *handler.TransferHandler) {
	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.DELETE("", taskHandler.ClearTasks)
		tasks.GET("/stats", taskHandler.GetStats)
		tasks.GET("/tags", taskHandler.GetTags)

		if transferHandler != nil {
			tasks.GET("/export", transferHandler.ExportTasks)
			tasks.POST("/import", transferHandler.ImportTasks)
		}

		tasks.GET("/:uuid", taskHandler.GetTask)
		tasks.PATCH("/:uuid", taskHandler.UpdateTask)
		tasks.POST("/:uuid/toggle", taskHandler.ToggleTask)
		tasks.DELETE("/:uuid", taskHandler.DeleteTask)
	}
}

func setupWeatherRoutes(api *gin.RouterGroup, weatherHandler *handler.WeatherHandler) {
	api.GET("/weather", weatherHandler.GetWeather)

	sessions := api.Group("/weather/sessions")
	{
		sessions.POST("", weatherHandler.CreateSession)
		sessions.GET("/:id", weatherHandler.GetSession)
		sessions.PUT("/:id/input", weatherHandler.InputSession)
		sessions.POST("/:id/search", weatherHandler.SearchSession)
		sessions.DELETE("/:id", weatherHandler.DeleteSession)
	}
}
