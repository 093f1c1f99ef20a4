package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(t *testing.T, enabled bool, limit int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	limiter := NewRateLimiter(client, enabled, zerolog.Nop())

	router := gin.New()
	router.GET("/ping", limiter.Limit("test", limit, window), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router, srv
}

func doRequest(router *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:52000"
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	router, _ := newRateLimitedRouter(t, true, 3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := doRequest(router)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router, _ := newRateLimitedRouter(t, true, 2, time.Minute)

	doRequest(router)
	doRequest(router)
	rec := doRequest(router)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")
}

func TestRateLimiter_WindowResets(t *testing.T) {
	router, srv := newRateLimitedRouter(t, true, 1, time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(router).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router).Code)

	// Drop the counter as if the window key expired
	srv.FlushAll()

	assert.Equal(t, http.StatusOK, doRequest(router).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	router, _ := newRateLimitedRouter(t, false, 1, time.Minute)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router).Code)
	}
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	router, srv := newRateLimitedRouter(t, true, 1, time.Minute)
	srv.Close()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router).Code)
	}
}
