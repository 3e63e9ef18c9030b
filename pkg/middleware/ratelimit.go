package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/p2pexchange/pkg/config"
	"github.com/wyfcoding/p2pexchange/pkg/contextx"
	"github.com/wyfcoding/p2pexchange/pkg/errorx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/ratelimit"
	"github.com/wyfcoding/p2pexchange/pkg/response"
)

// RateLimitMiddleware 已登录用户按用户 ID 计数，匿名请求按客户端 IP 计数
// 须挂在认证中间件之后；限流器不可用时放行
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := ratelimit.PerSecond(cfg.QPS, cfg.Burst)
	return func(c *gin.Context) {
		if !cfg.Enabled || limiter == nil {
			c.Next()
			return
		}

		key := ratelimit.IPKey(c.ClientIP())
		if userID, ok := contextx.UserID(c.Request.Context()); ok {
			key = ratelimit.UserKey(userID)
		}

		res, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			logger.Warn(c.Request.Context(), "Rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter/time.Second), 10))

		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter/time.Second)+1, 10))
			response.ErrorWithStatus(c, http.StatusTooManyRequests, "too many requests", errorx.Kind("RATE_LIMITED"))
			return
		}

		c.Next()
	}
}
