package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// blacklistCache marks a fixed set of keys as present
type blacklistCache struct {
	cache.Noop
	keys map[string]bool
	err  error
}

func (c *blacklistCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.keys[key], nil
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		svc := NewAuthService(testSecret, cache.NewNoop())
		token := signTestToken(t, testSecret, jwt.MapClaims{
			"userId": "u1",
			"email":  "marie@example.com",
			"role":   "EMPLOYEE",
			"exp":    time.Now().Add(time.Hour).Unix(),
		})

		claims, err := svc.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "marie@example.com", claims.Email)
		assert.Equal(t, "EMPLOYEE", claims.Role)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewAuthService(testSecret, cache.NewNoop())
		_, err := svc.VerifyToken(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("wrong signature", func(t *testing.T) {
		svc := NewAuthService(testSecret, cache.NewNoop())
		token := signTestToken(t, "another-secret", jwt.MapClaims{
			"userId": "u1",
			"exp":    time.Now().Add(time.Hour).Unix(),
		})

		_, err := svc.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := NewAuthService(testSecret, cache.NewNoop())
		token := signTestToken(t, testSecret, jwt.MapClaims{
			"userId": "u1",
			"exp":    time.Now().Add(-time.Hour).Unix(),
		})

		_, err := svc.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing user id", func(t *testing.T) {
		svc := NewAuthService(testSecret, cache.NewNoop())
		token := signTestToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := svc.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("blacklisted token", func(t *testing.T) {
		token := signTestToken(t, testSecret, jwt.MapClaims{
			"userId": "u1",
			"exp":    time.Now().Add(time.Hour).Unix(),
		})
		svc := NewAuthService(testSecret, &blacklistCache{keys: map[string]bool{
			"blacklist:" + token: true,
		}})

		_, err := svc.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("blacklist lookup failure fails closed", func(t *testing.T) {
		token := signTestToken(t, testSecret, jwt.MapClaims{
			"userId": "u1",
			"exp":    time.Now().Add(time.Hour).Unix(),
		})
		svc := NewAuthService(testSecret, &blacklistCache{err: errors.New("redis down")})

		_, err := svc.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}
