package services

import (
	"context"
	"log"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
)

// Claims is the validated identity behind a credential token
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// AuthService validates credential tokens. Token issuance happens in an
// external identity service; this side only verifies signatures and checks
// the logout blacklist.
type AuthService struct {
	secret []byte
	cache  cache.Cache
}

// NewAuthService creates a new auth service
func NewAuthService(secret string, c cache.Cache) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		cache:  c,
	}
}

// VerifyToken validates the token signature and expiry, then checks the
// blacklist. Any failure maps to ErrUnauthenticated; the detailed cause is
// only logged.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		log.Printf("Token verification failed: %v", err)
		return nil, ErrUnauthenticated
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	userID, _ := mapClaims["userId"].(string)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	blacklisted, err := s.cache.Exists(ctx, "blacklist:"+token)
	if err != nil {
		// Blacklist lookup failure fails closed: a token we cannot check is
		// not accepted.
		log.Printf("Blacklist check failed: %v", err)
		return nil, ErrUnauthenticated
	}
	if blacklisted {
		return nil, ErrUnauthenticated
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)

	return &Claims{UserID: userID, Email: email, Role: role}, nil
}
