package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the layer-op socket. Clients only listen; inbound
// frames are drained and dropped.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("sessionID"))
		defer hub.Unregister(client)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for op := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, op); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-writerDone
	}))
}
