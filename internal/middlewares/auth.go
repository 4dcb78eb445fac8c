package middlewares

import (
	"strings"

	"github.com/agicotech/ForumApp/internal/auth"
	"github.com/agicotech/ForumApp/model"
	"github.com/gofiber/fiber/v2"
)

const claimsLocalKey = "tokenClaims"

// TokenAuth parses the bearer token, if any, and stores the validated claims
// in the request locals. It never rejects: enforcement is done per route by
// RequireAuth and RequireRole, while the audit middleware only needs to know
// whether the caller proved an identity.
func TokenAuth(tokenService *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if claims, err := tokenService.Validate(token); err == nil {
				c.Locals(claimsLocalKey, claims)
			}
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the authenticated caller's claims, or nil if the
// request carried no valid token.
func ClaimsFromCtx(c *fiber.Ctx) *auth.TokenClaims {
	claims, _ := c.Locals(claimsLocalKey).(*auth.TokenClaims)
	return claims
}

func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ClaimsFromCtx(c) == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}
		return c.Next()
	}
}

// RequireRole rejects callers whose role claim is not in the allowed set:
// 401 without a proven identity, 403 with one of insufficient role.
func RequireRole(roles ...model.UserRole) fiber.Handler {
	allowed := make(map[model.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromCtx(c)
		if claims == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}
		if !allowed[claims.Role] {
			return fiber.NewError(fiber.StatusForbidden, "Insufficient permissions")
		}
		return c.Next()
	}
}
