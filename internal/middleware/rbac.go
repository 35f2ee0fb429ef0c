package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/utils"
)

// RequireRole ensures the authenticated claim carries one of the allowed
// roles. A missing claim is unauthenticated; a role mismatch is forbidden.
// Ownership checks stay in the services, next to the data they inspect.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if role.Valid() {
			allowed[role] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		claim, ok := ClaimFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
		}

		if _, ok := allowed[claim.Role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}
