package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

// Client is one websocket connection. Inbound frames are handed to onFrame one at a
// time, in arrival order.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	UserID uuid.UUID

	send   chan []byte
	mu     sync.Mutex
	closed bool

	onFrame func(Frame)
	logger  logger.ILogger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, log logger.ILogger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		UserID: userID,
		send:   make(chan []byte, sendBuffer),
		logger: log,
	}
}

// Send implements Sender.
func (c *Client) Send(frame Frame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("WS_CLIENT", "Failed to encode frame", map[string]interface{}{"type": frame.Type, "error": err})
		return false
	}
	return c.enqueue(data)
}

func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WS_CLIENT", "Connection closed unexpectedly", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
			c.Send(Frame{Type: FrameError, Message: "Malformed frame"})
			continue
		}
		if c.onFrame != nil {
			c.onFrame(frame)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One JSON frame per websocket message; frames are not batched.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
