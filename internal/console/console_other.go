//go:build !windows

// Package console detects how the program was started. Outside Windows,
// signal.Notify already handles Ctrl+C.
package console

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// IsRunningFromConsole reports whether stdin or stderr is a terminal. A
// desktop launcher starts the program without one.
func IsRunningFromConsole() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) || term.IsTerminal(int(os.Stderr.Fd()))
}

// SetupConsoleHandler is a no-op; the returned function does nothing either.
func SetupConsoleHandler(chan struct{}, *slog.Logger) func() {
	return func() {}
}
