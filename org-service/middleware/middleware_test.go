package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.WriteRateLimitMiddleware("X-Operator"))
	r.GET("/orgs", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/orgs", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func send(r *gin.Engine, method, operator string) int {
	req := httptest.NewRequest(method, "/orgs", nil)
	if operator != "" {
		req.Header.Set("X-Operator", operator)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestWriteRateLimit_BlocksAfterLimit(t *testing.T) {
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{MaxRequests: 2, TimeWindow: time.Minute, BlockDuration: time.Minute})
	rl.now = func() time.Time { return now }
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "alice"))
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "alice"))
	assert.Equal(t, http.StatusTooManyRequests, send(r, http.MethodPost, "alice"))

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "bob"), "limits are per operator")
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "alice"), "reads are not throttled")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "alice"))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, "req-42", entries[1].ContextMap()["request_id"])
	}
}
