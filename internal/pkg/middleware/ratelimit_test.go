package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doPing(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterRejectsWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := rateLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1"))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.2"))
}

func TestRateLimiterSweepsOnlyIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	// Age out the first visitor, then touch the second so it stays fresh.
	rl.mu.Lock()
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * visitorTTL)
	rl.mu.Unlock()
	rl.getLimiter("10.0.0.2")

	rl.removeIdle(time.Now().Add(-visitorTTL))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRateLimiterKeepsActiveBucketState(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	// Drain the only token, then sweep. The visitor is still active so the
	// sweep must not hand it a fresh bucket.
	require.True(t, rl.getLimiter("10.0.0.1").Allow())
	rl.removeIdle(time.Now().Add(-visitorTTL))

	assert.False(t, rl.getLimiter("10.0.0.1").Allow())
}
