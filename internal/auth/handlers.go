package auth

import (
	"errors"
	"time"

	"backend-racehub/internal/shared"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	protected := CookieMiddleware(svc)

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password required")
		}
		session, err := svc.Login(req)
		if err != nil {
			if errors.Is(err, shared.ErrInvalidCredentials) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Cookie(&fiber.Cookie{
			Name:     svc.CookieName(),
			Value:    session.Token,
			Expires:  session.ExpiresAt,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(session)
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     svc.CookieName(),
			Value:    "",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.Register(req)
		if err != nil {
			return registerError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	r.Get("/me", protected, func(c *fiber.Ctx) error {
		user, err := svc.Profile(c.Locals("username").(string))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(user)
	})

	r.Put("/details", protected, func(c *fiber.Ctx) error {
		var req UpdateDetailsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		user, err := svc.UpdateDetails(c.Locals("username").(string), req)
		if err != nil {
			switch {
			case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrNothingToUpdate):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, shared.ErrUserNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(user)
	})
}

func registerError(err error) error {
	switch {
	case errors.Is(err, shared.ErrUserExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrPasswordMismatch),
		errors.Is(err, shared.ErrNotPreauthorized):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
