package controller

import (
	"strings"

	"voice-assistant-be/internal/service"
	"voice-assistant-be/pkg/ics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICalendarController interface {
	RegisterRoutes(r fiber.Router)
	Feed(ctx *fiber.Ctx) error
}

type calendarController struct {
	service service.IEventService
}

func NewCalendarController(service service.IEventService) ICalendarController {
	return &calendarController{service: service}
}

// RegisterRoutes mounts the public feed. Calendar apps cannot send bearer tokens,
// so the unguessable user id is the only credential.
func (c *calendarController) RegisterRoutes(r fiber.Router) {
	r.Get("/calendar/:file", c.Feed)
}

func (c *calendarController) Feed(ctx *fiber.Ctx) error {
	name := ctx.Params("file")
	if !strings.HasSuffix(name, ".ics") {
		return fiber.NewError(fiber.StatusNotFound, "Calendar not found")
	}
	userId, err := uuid.Parse(strings.TrimSuffix(name, ".ics"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Calendar not found")
	}

	body, err := c.service.Feed(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, ics.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, `inline; filename="calendar.ics"`)
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
	return ctx.SendString(body)
}
