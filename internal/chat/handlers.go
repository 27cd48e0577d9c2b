package chat

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the chat proxy. Error bodies keep the {"error": ...}
// shape the web client parses.
func RegisterRoutes(r fiber.Router, client *Client) {
	r.Post("/ai-chat", func(c *fiber.Ctx) error {
		var req struct {
			Message string `json:"message"`
		}
		if err := c.BodyParser(&req); err != nil || req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "메시지가 필요합니다.",
			})
		}

		reply, err := client.Complete(c.Context(), req.Message)
		switch {
		case errors.Is(err, ErrNoToken), errors.Is(err, ErrUpstream):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "서버 오류가 발생했습니다.",
			})
		}

		return c.JSON(fiber.Map{"response": reply})
	})
}
