package gamepad

import "time"

const (
	DefaultDisconnectedRetry = time.Second
	DefaultOtherPlayerRetry  = 250 * time.Millisecond
)

// retryThrottle keeps disconnected slots from being re-polled every frame.
// Asking a backend about an empty slot can be slow, so after a failed read no
// disconnected slot is retried until the window has passed: the full window
// for the slot that failed, a shorter one for every other slot.
type retryThrottle struct {
	own   time.Duration
	other time.Duration
	now   func() time.Time

	connected [MaxPlayerCount]bool
	lastRead  [MaxPlayerCount]time.Time
}

func newRetryThrottle(own, other time.Duration, now func() time.Time) *retryThrottle {
	return &retryThrottle{own: own, other: other, now: now}
}

// skip reports whether the backend should not be asked about player now.
// Out-of-range players are always skipped.
func (r *retryThrottle) skip(player int) bool {
	if player < 0 || player >= MaxPlayerCount {
		return true
	}
	if r.connected[player] {
		return false
	}

	now := r.now()
	for j := 0; j < MaxPlayerCount; j++ {
		if r.connected[j] || r.lastRead[j].IsZero() {
			continue
		}
		interval := r.own
		if j != player {
			interval = r.other
		}
		if delta := now.Sub(r.lastRead[j]); delta >= 0 && delta < interval {
			return true
		}
	}
	return false
}

func (r *retryThrottle) markConnected(player int) {
	r.connected[player] = true
}

func (r *retryThrottle) markDisconnected(player int) {
	r.connected[player] = false
	r.lastRead[player] = r.now()
}
