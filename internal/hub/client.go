package hub

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 512
)

// PlayerController is the part of the gamepad reader a client may drive.
type PlayerController interface {
	ValidPlayer(player int) bool
	SetVibration(ctx context.Context, player int, left, right float64) bool
}

// Client represents a connected WebSocket client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	player atomic.Int32 // 0-based player slot this client is watching
}

// NewClient creates a new Client attached to the hub, watching player 0.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) Player() int {
	return int(c.player.Load())
}

func (c *Client) SetPlayer(player int) {
	c.player.Store(int32(player))
}

// WritePump sends queued messages and pings to the connection. It returns
// when the send channel is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// ReadPumpWithHandler reads client commands until the connection drops.
// onSelect runs after a successful player switch, typically to send the new
// player's full state.
func (c *Client) ReadPumpWithHandler(ctx context.Context, ctrl PlayerController, onSelect func(*Client)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		c.handle(ctx, message, ctrl, onSelect)
	}
}

func (c *Client) handle(ctx context.Context, message []byte, ctrl PlayerController, onSelect func(*Client)) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.logger.Warn("invalid client message", "error", err)
		return
	}

	switch msg.Type {
	case ClientSelectPlayer:
		if !ctrl.ValidPlayer(msg.PlayerIndex) {
			c.hub.logger.Warn("cannot select player", "player", msg.PlayerIndex)
			return
		}
		c.SetPlayer(msg.PlayerIndex)
		data, err := json.Marshal(NewPlayerSelectedMessage(msg.PlayerIndex))
		if err != nil {
			return
		}
		c.hub.Send(c, data)
		if onSelect != nil {
			onSelect(c)
		}
		c.hub.logger.Debug("client switched player", "player", msg.PlayerIndex)

	case ClientVibrate:
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if !ctrl.SetVibration(ctx, c.Player(), msg.Left, msg.Right) {
			c.hub.logger.Debug("vibration rejected", "player", c.Player())
		}

	default:
		c.hub.logger.Warn("unknown client message", "type", msg.Type)
	}
}
