package websocket

import (
	"context"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeVoice runs a voice session on conn until the peer disconnects.
func ServeVoice(hub *Hub, conn *websocket.Conn, userID uuid.UUID, conversation string, assistant service.IAssistantService, opts VoiceOptions, log logger.ILogger) {
	client := NewClient(hub, conn, userID, log)
	session := NewVoiceSession(client, userID, conversation, assistant, opts, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer session.Close()

	client.onFrame = func(f Frame) { session.HandleFrame(ctx, f) }
	hub.register <- client

	go client.writePump()
	client.readPump()
}
