package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxRequests: 3, WindowDuration: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("10.0.0.1")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, retryAfter := rl.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// A different client is unaffected.
	allowed, _ = rl.Allow("10.0.0.2")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxRequests: 1, WindowDuration: 20 * time.Millisecond})
	defer rl.Stop()

	allowed, _ := rl.Allow("10.0.0.1")
	require.True(t, allowed)
	allowed, _ = rl.Allow("10.0.0.1")
	require.False(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = rl.Allow("10.0.0.1")
	assert.True(t, allowed, "window expiry should reset the counter")
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(RateLimitConfig{MaxRequests: 2, WindowDuration: time.Minute})
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/book/all", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"books": []any{}})
	})

	request := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/book/all", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, request().Code)
	assert.Equal(t, http.StatusOK, request().Code)

	w := request()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
