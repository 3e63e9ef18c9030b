// Package token HS256 JWT 的签发与校验
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/p2pexchange/internal/auth/domain"
)

// Claims 用户 id 取自 sub，兼容旧令牌中的 userId
type Claims struct {
	UserID any `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier domain.TokenVerifier 的 HS256 实现
type JWTVerifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewJWTVerifier issuer 为空时不校验签发方
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTVerifier{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
	}
}

var _ domain.TokenVerifier = (*JWTVerifier)(nil)

// Verify 校验签名与有效期并解析用户 id
func (v *JWTVerifier) Verify(raw string) (*domain.Principal, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	id, ok := userID(claims)
	if !ok {
		return nil, fmt.Errorf("%w: missing user id", domain.ErrInvalidToken)
	}
	return &domain.Principal{UserID: id}, nil
}

// Sign 签发令牌，供内部工具与测试使用
func (v *JWTVerifier) Sign(userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func userID(c Claims) (uint, bool) {
	if c.Subject != "" {
		if id, err := strconv.ParseUint(c.Subject, 10, 64); err == nil && id > 0 {
			return uint(id), true
		}
	}
	switch v := c.UserID.(type) {
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v), true
		}
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			return uint(id), true
		}
	}
	return 0, false
}
