package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger dependencia que se puede sondear (pool de base de datos, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health responde 200 si todas las dependencias responden; 503 con la primera que falle.
func Health(deps map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for name, p := range deps {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "dependency": name})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
