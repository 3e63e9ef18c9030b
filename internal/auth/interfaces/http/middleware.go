// Package http Bearer 认证中间件
package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/p2pexchange/internal/auth/domain"
	"github.com/wyfcoding/p2pexchange/pkg/contextx"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/response"
)

// Required 未携带或无效令牌时返回 401
func Required(v domain.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "missing bearer token", "UNAUTHORIZED")
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			logger.Debug(c.Request.Context(), "Token rejected", "error", err)
			response.ErrorWithStatus(c, http.StatusUnauthorized, "invalid or expired token", "UNAUTHORIZED")
			return
		}
		attach(c, p)
		c.Next()
	}
}

// Optional 有有效令牌时注入身份，否则按匿名继续
func Optional(v domain.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearer(c); ok {
			if p, err := v.Verify(raw); err == nil {
				attach(c, p)
			}
		}
		c.Next()
	}
}

func bearer(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(h[7:])
	return raw, raw != ""
}

func attach(c *gin.Context, p *domain.Principal) {
	c.Set("userId", p.UserID)
	c.Request = c.Request.WithContext(contextx.WithUserID(c.Request.Context(), p.UserID))
}
