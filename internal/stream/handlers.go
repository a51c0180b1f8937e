package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionExists reports whether a race session may be watched.
type SessionExists func(sessionID string) bool

func RegisterRoutes(r fiber.Router, hub *Hub, exists SessionExists) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})

	r.Get("/ws/:sessionID", func(c *fiber.Ctx) error {
		if exists != nil && !exists(c.Params("sessionID")) {
			return fiber.NewError(fiber.StatusNotFound, "race session not found")
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("sessionID"))
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}))
}
