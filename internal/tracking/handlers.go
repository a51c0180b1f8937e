package tracking

import (
	"errors"
	"net/url"

	"backend-racehub/internal/shared"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		results, err := svc.Results(c.Context(), Filter{
			Track: c.Query("track"),
			Limit: c.QueryInt("limit", defaultLimit),
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"results": results})
	})

	r.Get("/tracks/:name/stats", func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid track name")
		}
		stats, err := svc.Stats(c.Context(), name)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		result, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, shared.ErrResultNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})
}
