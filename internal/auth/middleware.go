package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CookieMiddleware accepts the session cookie or a bearer token carrying
// the same JWT and stores username in locals.
func CookieMiddleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(svc.CookieName())
		if token == "" {
			token = bearerFromHeader(c.Get("Authorization"))
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing session cookie")
		}

		username, err := svc.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals("username", username)
		return c.Next()
	}
}

// PassThrough is used in place of CookieMiddleware when auth is disabled.
func PassThrough(c *fiber.Ctx) error {
	return c.Next()
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
