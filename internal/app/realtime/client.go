package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"bekgram/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a control message sent by the client.
	maxMessageSize = 4096

	// sendBufferSize is the per-session outbound queue depth. Sessions that
	// cannot drain fast enough drop events rather than block the hub.
	sendBufferSize = 256
)

// Client is one authenticated WebSocket session. It implements Session and
// forwards the client's channel subscriptions to the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	logger zerolog.Logger
}

// NewClient wraps an upgraded connection for the given user.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		logger: logx.Logger().With().Str("user_id", userID).Logger(),
	}
}

// UserID returns the owning user's id.
func (c *Client) UserID() string {
	return c.userID
}

// Enqueue queues an encoded event for delivery, dropping it when the
// session's buffer is full.
func (c *Client) Enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn().Msg("Session send buffer full. Event dropped.")
		return false
	}
}

// Close terminates the session from the server side.
func (c *Client) Close() {
	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Session close error")
	}
}

// inboundFrame is the small control vocabulary clients may send: channel
// subscriptions and explicit presence toggles.
type inboundFrame struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId,omitempty"`
	IsOnline *bool  `json:"isOnline,omitempty"`
}

// ReadPump consumes control frames until the connection drops, then
// unregisters the session. It also services the heartbeat Pong handler.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(ctx, c)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in ReadPump")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected session close")
			}
			return
		}

		c.processInboundFrame(ctx, messageBytes)
	}
}

// processInboundFrame dispatches one control frame. Unknown types are
// logged and ignored so protocol growth never kills old sessions.
func (c *Client) processInboundFrame(ctx context.Context, messageBytes []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		c.logger.Warn().Err(err).Msg("Session sent invalid JSON frame")
		return
	}

	switch frame.Type {
	case "chat:join":
		c.hub.JoinChat(ctx, c, frame.ChatID)

	case "chat:leave":
		if frame.ChatID != "" {
			c.hub.LeaveChat(c, frame.ChatID)
		}

	case "presence:set":
		if frame.IsOnline != nil {
			c.hub.SetPresence(ctx, c.userID, *frame.IsOnline)
		}

	default:
		c.logger.Warn().Str("frame_type", frame.Type).Msg("Session sent unsupported frame type")
	}
}

// WritePump drains the send queue to the connection and keeps the
// heartbeat alive. It owns all writes to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
