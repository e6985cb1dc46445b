package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/domain"
)

// RequireRole ensures the caller is authenticated with the given role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.Session.Role != role {
			return fiber.NewError(http.StatusForbidden, string(role)+" role required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated (seeker or worker).
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
