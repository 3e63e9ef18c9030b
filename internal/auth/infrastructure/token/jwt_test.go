package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/p2pexchange/internal/auth/domain"
)

func TestSignAndVerify(t *testing.T) {
	v := NewJWTVerifier("secret", "p2p")
	raw, err := v.Sign(42, time.Minute)
	require.NoError(t, err)

	p, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), p.UserID)
}

func TestVerifyUserIDClaim(t *testing.T) {
	v := NewJWTVerifier("secret", "")
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 7,
		"exp":    time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	p, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(7), p.UserID)
}

func TestVerifyRejects(t *testing.T) {
	v := NewJWTVerifier("secret", "p2p")

	sign := func(secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
		raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return raw
	}
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{"sub": "1", "iss": "p2p", "exp": time.Now().Add(time.Minute).Unix()}
	}

	expired := valid()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	wrongIssuer := valid()
	wrongIssuer["iss"] = "someone-else"
	noUser := valid()
	delete(noUser, "sub")
	noExp := valid()
	delete(noExp, "exp")

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign("other", jwt.SigningMethodHS256, valid()),
		"wrong method": sign("secret", jwt.SigningMethodHS512, valid()),
		"expired":      sign("secret", jwt.SigningMethodHS256, expired),
		"wrong issuer": sign("secret", jwt.SigningMethodHS256, wrongIssuer),
		"no user":      sign("secret", jwt.SigningMethodHS256, noUser),
		"no expiry":    sign("secret", jwt.SigningMethodHS256, noExp),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(raw)
			assert.True(t, errors.Is(err, domain.ErrInvalidToken), err)
		})
	}
}
