package race

import (
	"errors"

	"backend-racehub/internal/shared"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, reg *Registry, runner *Runner, authMiddleware fiber.Handler) {
	session := func(c *fiber.Ctx) (*Session, error) {
		s, err := reg.Get(c.Params("id"))
		if err != nil {
			return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return s, nil
	}

	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		s := reg.Create()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": s.ID, "state": s.State()})
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		s, err := session(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"frame": s.Snapshot(), "running": runner.Running(s.ID)})
	})

	r.Delete("/sessions/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := reg.End(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/sessions/:id/track", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Name  string `json:"name"`
			Start *bool  `json:"start"`
		}
		if err := c.BodyParser(&body); err != nil || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		s, err := session(c)
		if err != nil {
			return err
		}
		if err := s.SelectTrack(c.Context(), body.Name); err != nil {
			if errors.Is(err, shared.ErrTrackNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if body.Start == nil || *body.Start {
			runner.Start(s)
		}
		return c.JSON(fiber.Map{"frame": s.Snapshot(), "running": runner.Running(s.ID)})
	})

	r.Post("/sessions/:id/tick", authMiddleware, func(c *fiber.Ctx) error {
		s, err := session(c)
		if err != nil {
			return err
		}
		frame, ok := s.Tick()
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		if err := runner.Emit(c.Context(), frame); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(frame)
	})

	r.Post("/sessions/:id/start", authMiddleware, func(c *fiber.Ctx) error {
		s, err := session(c)
		if err != nil {
			return err
		}
		if s.State() == StateIdle {
			return fiber.NewError(fiber.StatusConflict, shared.ErrNoTrackSelected.Error())
		}
		if !runner.Start(s) {
			return fiber.NewError(fiber.StatusConflict, "race already running or finished")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"running": true})
	})

	r.Post("/sessions/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		s, err := session(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"stopped": runner.Stop(s.ID)})
	})

	r.Put("/sessions/:id/marker", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Visible *bool `json:"visible"`
		}
		if err := c.BodyParser(&body); err != nil || body.Visible == nil {
			return fiber.NewError(fiber.StatusBadRequest, "visible required")
		}
		s, err := session(c)
		if err != nil {
			return err
		}
		s.SetMarkerVisible(*body.Visible)
		return c.JSON(s.Snapshot())
	})

	r.Get("/sessions/:id/summary", func(c *fiber.Ctx) error {
		s, err := session(c)
		if err != nil {
			return err
		}
		return c.JSON(s.Summary())
	})
}
