// Package domain 请求方身份
package domain

import "errors"

// ErrInvalidToken 令牌缺失、签名错误、过期或不含用户 id
var ErrInvalidToken = errors.New("invalid or expired token")

// Principal 已认证的请求方
type Principal struct {
	UserID uint
}

// TokenVerifier 校验 Bearer 令牌
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
