package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// IdentityResolver loads the current identity for a token subject.
type IdentityResolver interface {
	IdentityFor(ctx context.Context, userID string) (domain.Identity, error)
}

// AuthMiddleware validates bearer tokens and loads identities.
type AuthMiddleware struct {
	tokens   *TokenManager
	resolver IdentityResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, resolver IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	identity, err := m.resolve(c, authHeader)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// Optional attaches an identity when a valid bearer token is present and lets
// anonymous callers through otherwise.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}
	identity, err := m.resolve(c, authHeader)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx, authHeader string) (domain.Identity, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Identity{}, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Identity{}, apperrors.NewUnauthorized("invalid token")
	}

	identity, err := m.resolver.IdentityFor(c.UserContext(), claims.UserID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			return domain.Identity{}, apperrors.NewUnauthorized("account not found")
		}
		var de *apperrors.DomainError
		if errors.As(err, &de) {
			return domain.Identity{}, de
		}
		return domain.Identity{}, apperrors.MapError(err)
	}
	return identity, nil
}

// IdentityFromContext retrieves the authenticated identity. Anonymous callers get the zero Identity.
func IdentityFromContext(c *fiber.Ctx) domain.Identity {
	identity, _ := c.Locals(identityKey).(domain.Identity)
	return identity
}
