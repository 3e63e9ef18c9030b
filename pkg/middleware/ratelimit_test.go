package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/wyfcoding/p2pexchange/pkg/config"
	"github.com/wyfcoding/p2pexchange/pkg/contextx"
	"github.com/wyfcoding/p2pexchange/pkg/ratelimit"
)

type countingLimiter struct {
	allowed int
	keys    []string
	err     error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit ratelimit.Limit) (*ratelimit.Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	ok := len(l.keys) <= l.allowed
	res := &ratelimit.Result{Allowed: ok, Remaining: l.allowed - len(l.keys)}
	if !ok {
		res.Remaining = 0
		res.RetryAfter = 500 * time.Millisecond
	}
	return res, nil
}

func limitedRouter(l ratelimit.RateLimiter, user uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != 0 {
			c.Request = c.Request.WithContext(contextx.WithUserID(c.Request.Context(), user))
		}
	})
	r.Use(RateLimitMiddleware(l, config.RateLimitConfig{Enabled: true, QPS: 2, Burst: 2}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	return w
}

func TestRateLimitByUser(t *testing.T) {
	l := &countingLimiter{allowed: 2}
	r := limitedRouter(l, 42)

	assert.Equal(t, http.StatusNoContent, hit(r).Code)
	assert.Equal(t, http.StatusNoContent, hit(r).Code)
	w := hit(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, ratelimit.UserKey(42), l.keys[0])
}

func TestRateLimitAnonymousUsesIP(t *testing.T) {
	l := &countingLimiter{allowed: 5}
	hit(limitedRouter(l, 0))
	assert.Equal(t, ratelimit.IPKey("192.0.2.1"), l.keys[0])
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := limitedRouter(&countingLimiter{err: errors.New("redis down")}, 1)
	assert.Equal(t, http.StatusNoContent, hit(r).Code)
}
