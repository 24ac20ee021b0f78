package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// TokenRequest describes a token minted by operators with slactl, for
// service accounts and support access.
type TokenRequest struct {
	Subject string
	ShopID  string
	Role    domain.Role
	TTL     time.Duration
}

// IssueToken signs a token the verifier accepts. The claims are validated
// before signing so a malformed request never yields a token.
func IssueToken(secret string, req TokenRequest, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("signing secret is empty")
	}
	if req.TTL <= 0 {
		return "", time.Time{}, errors.New("token ttl must be positive")
	}
	expiresAt := now.Add(req.TTL)
	claims := &Claims{
		ShopID: req.ShopID,
		Role:   req.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if err := claims.Validate(); err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
