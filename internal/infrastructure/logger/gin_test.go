package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(log *zap.Logger, handler gin.HandlerFunc) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-42")
			c.Next()
		})
		router.Use(GinMiddleware(log))
		router.GET("/portal/me", handler)
		return router
	}

	t.Run("handlers log through the request context", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		router := newRouter(zap.New(core), func(c *gin.Context) {
			L(c.Request.Context()).Info("resolving viewer")
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/portal/me", nil))

		entries := logs.FilterMessage("resolving viewer").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	})

	t.Run("every request gets an access log line", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		router := newRouter(zap.New(core), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/portal/me", nil))

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "/portal/me", fields["path"])
		assert.EqualValues(t, http.StatusNoContent, fields["status"])
	})

	t.Run("server errors are logged at error level", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		router := newRouter(zap.New(core), func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/portal/me", nil))

		entries := logs.FilterMessage("HTTP Request").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	})
}
