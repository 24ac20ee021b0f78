package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

// uuidParam returns the named route param when it is a well-formed UUID.
// Anything else cannot match a stored row and is reported as not found.
func uuidParam(c *fiber.Ctx, name, resource string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{name: raw})
	}
	return id.String(), nil
}
