package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newGinRouter(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware(log))
	return router
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	log, logs := newObservedLogger()
	router := newGinRouter(log)
	router.GET("/api/v1/transacoes", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transacoes?dia=2026-08-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "HTTP Request", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "GET", fieldValue(t, entry, "method"))
	assert.Equal(t, "/api/v1/transacoes", fieldValue(t, entry, "path"))
	assert.Equal(t, "dia=2026-08-31", fieldValue(t, entry, "query"))
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	cases := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tc := range cases {
		log, logs := newObservedLogger()
		router := newGinRouter(log)
		router.GET("/test", func(c *gin.Context) {
			c.Status(tc.status)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, 1, logs.Len(), "status %d", tc.status)
		assert.Equal(t, tc.level, logs.All()[0].Level, "status %d", tc.status)
	}
}

func TestGinMiddleware_PropagatesLoggerToRequestContext(t *testing.T) {
	log, logs := newObservedLogger()
	router := newGinRouter(log)
	router.GET("/test", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("from handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "from handler", logs.All()[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	log, _ := newObservedLogger()
	router := newGinRouter(log)

	var fromGin *zap.Logger
	router.GET("/test", func(c *gin.Context) {
		fromGin = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotNil(t, fromGin)
}

func TestGetGinLogger_MissingReturnsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	log := GetGinLogger(c)
	require.NotNil(t, log)
	log.Info("safe to use")
}

func TestRecovery_HandlesPanic(t *testing.T) {
	log, logs := newObservedLogger()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/boom", func(c *gin.Context) {
		panic("unexpected state")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}
