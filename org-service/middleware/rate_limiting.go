package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"eduadmin-backend/shared/config"

	"github.com/gin-gonic/gin"
)

// RateLimit - Rate limit info for one client
type RateLimit struct {
	Count      int
	ResetAt    time.Time
	LastAccess time.Time
	Blocked    bool
	BlockUntil time.Time
}

// RateLimitConfig - Rate limiter configuration
type RateLimitConfig struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitConfig - Creates a RateLimitConfig from the service configuration
func NewRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:   cfg.GetWriteRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetWriteRateLimitWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetWriteRateLimitBlockSeconds()) * time.Second,
	}
}

// RateLimiter throttles directory writes per operator (or client IP when the
// operator header is missing). Reads are never throttled.
type RateLimiter struct {
	store  map[string]*RateLimit
	mutex  sync.Mutex
	config RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store:  make(map[string]*RateLimit),
		config: cfg,
		now:    time.Now,
	}
}

// RunCleanup removes idle entries every interval until ctx is done
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mutex.Lock()
			now := rl.now()
			for key, limit := range rl.store {
				if !limit.Blocked && now.Sub(limit.LastAccess) > rl.config.TimeWindow {
					delete(rl.store, key)
				}
			}
			rl.mutex.Unlock()
		}
	}
}

// isAllowed - Checks if the request is allowed based on rate limiting
func (rl *RateLimiter) isAllowed(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	limit, exists := rl.store[key]

	// First request from this key
	if !exists {
		rl.store[key] = &RateLimit{
			Count:      1,
			ResetAt:    now.Add(rl.config.TimeWindow),
			LastAccess: now,
		}
		return true
	}

	if limit.Blocked {
		if now.After(limit.BlockUntil) {
			// Block period expired, reset
			limit.Blocked = false
			limit.Count = 1
			limit.ResetAt = now.Add(rl.config.TimeWindow)
			limit.LastAccess = now
			return true
		}
		return false
	}

	// Reset window if time expired
	if now.After(limit.ResetAt) {
		limit.Count = 1
		limit.ResetAt = now.Add(rl.config.TimeWindow)
		limit.LastAccess = now
		return true
	}

	if limit.Count >= rl.config.MaxRequests {
		limit.Blocked = true
		limit.BlockUntil = now.Add(rl.config.BlockDuration)
		limit.LastAccess = now
		return false
	}

	limit.Count++
	limit.LastAccess = now
	return true
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// WriteRateLimitMiddleware rejects writes beyond the configured rate with 429
func (rl *RateLimiter) WriteRateLimitMiddleware(operatorHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWrite(c.Request.Method) {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if operator := c.GetHeader(operatorHeader); operator != "" {
			key = "operator:" + operator
		}

		if !rl.isAllowed(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Too many directory changes. Please try again later.",
				"code":        "rate_limited",
				"retry_after": rl.config.BlockDuration.Seconds(),
			})
			return
		}

		c.Next()
	}
}
