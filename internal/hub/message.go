package hub

import (
	"time"

	"github.com/soar/padview/internal/gamepad"
)

const (
	TypeFull           = "full"
	TypeDelta          = "delta"
	TypeEvent          = "event"
	TypePlayerSelected = "player_selected"

	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventPressed      = "pressed"
	EventReleased     = "released"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type         string                `json:"type"`
	Seq          int64                 `json:"seq"`
	Timestamp    int64                 `json:"timestamp"` // Unix milliseconds
	PlayerIndex  int                   `json:"playerIndex"`
	Event        string                `json:"event,omitempty"`
	Buttons      []string              `json:"buttons,omitempty"` // for pressed/released events
	Data         *gamepad.State        `json:"data,omitempty"`
	Changes      *gamepad.DeltaChanges `json:"changes,omitempty"`
	Capabilities *gamepad.Capabilities `json:"capabilities,omitempty"`
}

// NewFullMessage creates a "full" message containing the complete state.
func NewFullMessage(seq int64, player int, state *gamepad.State) *WSMessage {
	return &WSMessage{
		Type:        TypeFull,
		Seq:         seq,
		Timestamp:   time.Now().UnixMilli(),
		PlayerIndex: player,
		Data:        state,
	}
}

// NewDeltaMessage creates a "delta" message containing only changed groups.
func NewDeltaMessage(seq int64, player int, changes *gamepad.DeltaChanges) *WSMessage {
	return &WSMessage{
		Type:        TypeDelta,
		Seq:         seq,
		Timestamp:   time.Now().UnixMilli(),
		PlayerIndex: player,
		Changes:     changes,
	}
}

// NewEventMessage creates an "event" message. Connect events carry the full
// state and capabilities, button events carry the button names.
func NewEventMessage(seq int64, player int, event string) *WSMessage {
	return &WSMessage{
		Type:        TypeEvent,
		Seq:         seq,
		Timestamp:   time.Now().UnixMilli(),
		PlayerIndex: player,
		Event:       event,
	}
}

func NewPlayerSelectedMessage(player int) *WSMessage {
	return &WSMessage{
		Type:        TypePlayerSelected,
		Timestamp:   time.Now().UnixMilli(),
		PlayerIndex: player,
	}
}

const (
	ClientSelectPlayer = "select_player"
	ClientVibrate      = "vibrate"
)

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type        string  `json:"type"`
	PlayerIndex int     `json:"playerIndex,omitempty"`
	Left        float64 `json:"left,omitempty"`
	Right       float64 `json:"right,omitempty"`
}
