//go:build !windows

package xinput

import (
	"log/slog"

	"github.com/soar/padview/internal/gamepad"
)

func Open(*slog.Logger) (gamepad.Device, error) {
	return nil, ErrUnsupported
}
