package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-appbuilder-be/pkg/poller"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Frame is what the stream writes. Type is "status" or "error".
type Frame struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId"`
	Status   string `json:"status,omitempty"`
	Terminal bool   `json:"terminal,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message,omitempty"`
}

// control lets the peer switch the followed chat or pause polling.
type control struct {
	ChatID  *string `json:"chatId"`
	Enabled *bool   `json:"enabled"`
}

// Client is one status stream: a websocket connection with its own poller.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Identity string
	Send     chan []byte

	poller *poller.Poller
	ctx    context.Context

	mu      sync.Mutex
	chat    string
	enabled bool
	closed  bool
}

func (c *Client) chatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat
}

func (c *Client) watch(chatID string, enabled bool) {
	c.mu.Lock()
	previous := c.chat
	c.chat = chatID
	c.enabled = enabled
	c.mu.Unlock()

	if previous != chatID {
		c.Hub.move(c, previous, chatID)
	}
	c.poller.Watch(c.ctx, chatID, enabled)
}

func (c *Client) onStatus(chatID string, status v0.VersionStatus) {
	c.enqueue(Frame{Type: "status", ChatID: chatID, Status: string(status), Terminal: status.IsTerminal()})
}

func (c *Client) onError(chatID string, err error) {
	c.enqueue(Frame{Type: "error", ChatID: chatID, Kind: string(v0.KindOf(err)), Message: err.Error()})
}

// enqueue drops the frame when the peer is not keeping up.
func (c *Client) enqueue(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) close() {
	c.poller.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// readPump handles control messages until the peer goes away.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected close", map[string]interface{}{"chat_id": c.chatID(), "error": err.Error()})
			}
			break
		}

		var msg control
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.enqueue(Frame{Type: "error", ChatID: c.chatID(), Kind: string(v0.KindValidation), Message: "Invalid control message"})
			continue
		}

		c.mu.Lock()
		chatID, enabled := c.chat, c.enabled
		c.mu.Unlock()
		if msg.ChatID != nil {
			chatID = *msg.ChatID
		}
		if msg.Enabled != nil {
			enabled = *msg.Enabled
		}
		c.watch(chatID, enabled)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
