package auth

import (
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"poznote/internal/domain"
	"poznote/internal/domain/models"
)

// JWTVerifier defines the interface for session token verification.
// The abstraction keeps the middleware agnostic to how tokens are checked.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed
	// claims. Returns an error if the token is invalid or expired.
	VerifyToken(tokenString string) (*models.SessionClaims, error)
}

// HS256Verifier verifies self-issued session tokens with a shared secret.
type HS256Verifier struct {
	secret []byte
	logger *slog.Logger
}

// NewJWTVerifier creates a session token verifier.
func NewJWTVerifier(secret string, logger *slog.Logger) (JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret cannot be empty")
	}

	return &HS256Verifier{
		secret: []byte(secret),
		logger: logger,
	}, nil
}

// VerifyToken validates a session token and extracts its claims.
func (v *HS256Verifier) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		// Pin the algorithm to prevent confusion attacks
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
