package handler

import (
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/pkg/serverutils"
	"voice-assistant-be/internal/service"
	internalWS "voice-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type VoiceHandler struct {
	hub       *internalWS.Hub
	assistant service.IAssistantService
	options   internalWS.VoiceOptions
	logger    logger.ILogger
}

func NewVoiceHandler(hub *internalWS.Hub, assistant service.IAssistantService, opts internalWS.VoiceOptions, log logger.ILogger) *VoiceHandler {
	return &VoiceHandler{
		hub:       hub,
		assistant: assistant,
		options:   opts,
		logger:    log,
	}
}

func (h *VoiceHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/voice", h.ServeWs)
}

// ServeWs authenticates the handshake and upgrades it into a voice session. Browsers
// cannot set headers on websocket requests, so the token may come as a query param.
func (h *VoiceHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userID, err := serverutils.ParseUserID(tokenStr)
	if err != nil {
		h.logger.Warn("VOICE_HANDLER", "Invalid token in handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	conversation := c.Query("conversation", "voice")
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("VOICE_HANDLER", "Voice session started", map[string]interface{}{"user_id": userID, "conversation": conversation})
		internalWS.ServeVoice(h.hub, conn, userID, conversation, h.assistant, h.options, h.logger)
		h.logger.Info("VOICE_HANDLER", "Voice session ended", map[string]interface{}{"user_id": userID})
	})(c)
}
