package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

// JobKeyHeader carries the shared key external schedulers present.
const JobKeyHeader = "X-Job-Key"

// HashJobKey hashes a plaintext job key for storage in AUTH_JOB_KEY_HASH.
func HashJobKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareJobKey verifies a presented key against its hashed value.
func CompareJobKey(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// RequireJobKey protects job trigger routes. An empty hash disables the check.
func RequireJobKey(hashed string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hashed == "" {
			return c.Next()
		}
		presented := c.Get(JobKeyHeader)
		if presented == "" {
			return apperrors.NewUnauthorized("missing job key")
		}
		if err := CompareJobKey(hashed, presented); err != nil {
			return apperrors.NewUnauthorized("invalid job key")
		}
		return c.Next()
	}
}
