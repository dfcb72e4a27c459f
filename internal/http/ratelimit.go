package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter protects the two catalog listing routes from abusive clients.
// It tracks request counts per client IP using a sliding window.
type RateLimiter struct {
	mu              sync.RWMutex
	requests        map[string]*requestRecord
	maxRequests     int
	windowDuration  time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

type requestRecord struct {
	count       int
	windowStart time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxRequests     int           // Maximum requests per window (default: 10)
	WindowDuration  time.Duration // Time window for counting requests (default: 1m)
	CleanupInterval time.Duration // How often to clean up expired records (default: 5m)
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:     10,
		WindowDuration:  time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 10
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		requests:        make(map[string]*requestRecord),
		maxRequests:     cfg.MaxRequests,
		windowDuration:  cfg.WindowDuration,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCleanup)
}

// Allow records a request for the given client and reports whether it is
// within the limit. When it is not, retryAfter indicates when the current
// window expires.
func (rl *RateLimiter) Allow(clientIP string) (allowed bool, retryAfter time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.requests[clientIP]
	if !exists || now.Sub(record.windowStart) > rl.windowDuration {
		rl.requests[clientIP] = &requestRecord{count: 1, windowStart: now}
		return true, 0
	}

	if record.count < rl.maxRequests {
		record.count++
		return true, 0
	}

	return false, record.windowStart.Add(rl.windowDuration).Sub(now)
}

// Middleware returns a Gin middleware that rejects over-limit requests
// with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(c.ClientIP())
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// cleanupLoop periodically removes expired records to prevent memory growth.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, record := range rl.requests {
		if now.Sub(record.windowStart) > rl.windowDuration {
			delete(rl.requests, ip)
		}
	}
}
