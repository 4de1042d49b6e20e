package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// RequireRole ensures the caller is authenticated with one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity := IdentityFromContext(c)
		if identity.Anonymous() {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewUnauthorized("insufficient role")
		}
		return c.Next()
	}
}
