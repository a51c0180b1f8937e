package track

import (
	"errors"
	"net/url"

	"backend-racehub/internal/shared"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, src Source) {
	r.Get("/", func(c *fiber.Ctx) error {
		names, err := src.Names(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if names == nil {
			names = []string{}
		}
		return c.JSON(fiber.Map{"tracks": names})
	})

	r.Get("/:name", func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid track name")
		}
		t, err := src.Get(c.Context(), name)
		if errors.Is(err, shared.ErrTrackNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(t.Detail())
	})
}
