package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(limit int, window time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(limit, window)))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		w := doRequest(router, "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	router := newRateLimitedRouter(2, time.Minute)

	doRequest(router, "10.0.0.1")
	doRequest(router, "10.0.0.1")
	w := doRequest(router, "10.0.0.1")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_SeparateKeys(t *testing.T) {
	router := newRateLimitedRouter(1, time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1").Code)
}

func TestRateLimit_WindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1").Code)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
}

func TestRateLimit_Headers(t *testing.T) {
	router := newRateLimitedRouter(5, time.Minute)

	w := doRequest(router, "10.0.0.1")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	assert.Equal(t, 3, limiter.Remaining("key"))
	limiter.Allow("key")
	assert.Equal(t, 2, limiter.Remaining("key"))
	limiter.Allow("key")
	limiter.Allow("key")
	assert.Equal(t, 0, limiter.Remaining("key"))
	assert.False(t, limiter.Allow("key"))
}
