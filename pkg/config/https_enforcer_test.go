package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newEnforcedRouter(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewHTTPSEnforcer(enabled, zap.NewNop()).HTTPSMiddleware())
	router.GET("/api/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}

func TestHTTPSEnforcer(t *testing.T) {
	t.Run("should redirect plain http", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "http://dash.example.com/api/tasks?q=x", nil)

		newEnforcedRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://dash.example.com/api/tasks?q=x", w.Header().Get("Location"))
	})

	t.Run("should pass forwarded https", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "http://dash.example.com/api/tasks", nil)
		req.Header.Set("X-Forwarded-Proto", "https")

		newEnforcedRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should pass localhost", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "http://localhost:8080/api/tasks", nil)

		newEnforcedRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should pass when disabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "http://dash.example.com/api/tasks", nil)

		newEnforcedRouter(false).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
