package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/soar/padview/internal/gamepad"
)

const (
	DefaultFullSyncInterval = 5 * time.Second
	DefaultDeltaCountSync   = 100
)

// Broadcaster turns reader frames into hub messages.
type Broadcaster struct {
	hub      *Hub
	changes  <-chan gamepad.Frame
	interval time.Duration
	maxDelta int
	logger   *slog.Logger

	mu         sync.Mutex
	seq        int64
	last       [gamepad.MaxPlayerCount]gamepad.State
	caps       [gamepad.MaxPlayerCount]gamepad.Capabilities
	deltaCount [gamepad.MaxPlayerCount]int
}

type BroadcasterOptions struct {
	FullSyncInterval time.Duration
	DeltaCountSync   int
	Logger           *slog.Logger
}

func NewBroadcaster(h *Hub, changes <-chan gamepad.Frame, opts BroadcasterOptions) *Broadcaster {
	if opts.FullSyncInterval <= 0 {
		opts.FullSyncInterval = DefaultFullSyncInterval
	}
	if opts.DeltaCountSync <= 0 {
		opts.DeltaCountSync = DefaultDeltaCountSync
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Broadcaster{
		hub:      h,
		changes:  changes,
		interval: opts.FullSyncInterval,
		maxDelta: opts.DeltaCountSync,
		logger:   opts.Logger,
	}
}

// Run consumes frames until the channel closes or ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-b.changes:
			if !ok {
				return
			}
			b.handle(f)
		case <-ticker.C:
			b.syncAll()
		case <-ctx.Done():
			return
		}
	}
}

func (b *Broadcaster) handle(f gamepad.Frame) {
	if f.Player < 0 || f.Player >= gamepad.MaxPlayerCount {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := f.Player
	prev := b.last[p]
	b.last[p] = f.State
	b.caps[p] = f.Capabilities

	switch {
	case f.State.Connected && !prev.Connected:
		// The connect event carries the full state; buttons already held are
		// still reported as pressed below.
		msg := NewEventMessage(b.next(), p, EventConnected)
		msg.Data = &f.State
		msg.Capabilities = &f.Capabilities
		b.deltaCount[p] = 0
		b.send(p, msg)
		b.logger.Debug("connect event sent", "player", p)
	case !f.State.Connected && prev.Connected:
		b.deltaCount[p] = 0
		b.send(p, NewEventMessage(b.next(), p, EventDisconnected))
		b.logger.Debug("disconnect event sent", "player", p)
	default:
		if delta := gamepad.ComputeDelta(prev, f.State); !delta.IsEmpty() {
			b.deltaCount[p]++
			if b.deltaCount[p] >= b.maxDelta {
				b.deltaCount[p] = 0
				b.send(p, NewFullMessage(b.next(), p, &f.State))
			} else {
				b.send(p, NewDeltaMessage(b.next(), p, delta))
			}
		}
	}

	b.sendButtons(p, EventPressed, f.Transitions.Names(gamepad.Pressed))
	b.sendButtons(p, EventReleased, f.Transitions.Names(gamepad.Released))
}

func (b *Broadcaster) sendButtons(player int, event string, names []string) {
	if len(names) == 0 {
		return
	}
	msg := NewEventMessage(b.next(), player, event)
	msg.Buttons = names
	b.send(player, msg)
}

func (b *Broadcaster) syncAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for p := 0; p < gamepad.MaxPlayerCount; p++ {
		if !b.last[p].Connected {
			continue
		}
		state := b.last[p]
		b.send(p, NewFullMessage(b.next(), p, &state))
	}
}

// SendInitialState sends the full state of the client's player. Empty slots
// yield a zero, disconnected state.
func (b *Broadcaster) SendInitialState(c *Client) {
	p := c.Player()
	if p < 0 || p >= gamepad.MaxPlayerCount {
		return
	}

	b.mu.Lock()
	state := b.last[p]
	caps := b.caps[p]
	msg := NewFullMessage(b.next(), p, &state)
	b.mu.Unlock()

	if state.Connected {
		msg.Capabilities = &caps
	}
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("marshal initial state", "error", err)
		return
	}
	b.hub.Send(c, data)
}

// next must be called with mu held.
func (b *Broadcaster) next() int64 {
	b.seq++
	return b.seq
}

func (b *Broadcaster) send(player int, msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("marshal message", "type", msg.Type, "error", err)
		return
	}
	b.hub.BroadcastToPlayer(data, player)
}
