package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	apperrors "github.com/spec-kit/repair-sla-service/pkg/util/errorutil"
)

// RequireShopAccess ensures the principal belongs to the shop in the :shopID
// route param. Admins may access every shop.
func RequireShopAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role == domain.RoleAdmin {
			return c.Next()
		}
		if principal.ShopID == "" || principal.ShopID != c.Params("shopID") {
			return apperrors.NewForbidden("shop access denied")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
