package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	name      string
	port      string
	startedAt time.Time
}

func NewHealthController(name, port string) IHealthController {
	return &healthController{name: name, port: port, startedAt: time.Now()}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"status": "ok",
		"server": c.name,
		"port":   c.port,
		"uptime": time.Since(c.startedAt).Round(time.Second).String(),
	})
}
