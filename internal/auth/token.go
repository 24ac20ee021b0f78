package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

const tokenLeeway = 30 * time.Second

// Claims is the bearer token payload. The subject is carried in the
// registered "sub" claim.
type Claims struct {
	ShopID string      `json:"shop_id,omitempty"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks during parsing.
func (c *Claims) Validate() error {
	if c.Subject == "" {
		return errors.New("token has no subject")
	}
	switch c.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleStaff, domain.RoleOwner:
		if c.ShopID == "" {
			return fmt.Errorf("%s token has no shop_id", c.Role)
		}
		return nil
	default:
		return fmt.Errorf("unknown role %q", c.Role)
	}
}

// TokenVerifier checks HS256 bearer tokens issued by the shop console.
type TokenVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenVerifier builds a verifier for the shared signing secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(tokenLeeway),
		),
	}
}

// ParseToken validates raw and returns its claims.
func (v *TokenVerifier) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}
