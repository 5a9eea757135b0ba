// Package tray shows a system tray icon with the connected players and menu
// entries to open the viewer or quit.
package tray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/systray"

	"github.com/soar/padview/internal/gamepad"
)

// ShutdownFunc is called when "Exit" is clicked.
type ShutdownFunc func()

// StatusFunc returns the current frame of every polled player.
type StatusFunc func() []gamepad.Frame

// PauseFunc suspends (paused true) or resumes gamepad input and reports
// whether the change took effect.
type PauseFunc func(paused bool) bool

type Options struct {
	Title    string
	URL      string
	Status   StatusFunc
	Pause    PauseFunc
	Refresh  time.Duration
	Shutdown ShutdownFunc
	Logger   *slog.Logger
}

// Tray manages the system tray icon and menu.
type Tray struct {
	opts         Options
	once         sync.Once
	shuttingDown atomic.Bool
	stop         chan struct{}
	paused       atomic.Bool
	menuPause    *systray.MenuItem
	menuOpen     *systray.MenuItem
	menuExit     *systray.MenuItem
	menuPlayers  []*systray.MenuItem
}

func New(opts Options) *Tray {
	if opts.Title == "" {
		opts.Title = "padview"
	}
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Tray{opts: opts, stop: make(chan struct{})}
}

// Run initializes the tray and blocks until Quit.
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, t.onExit)
}

// Quit removes the tray icon, which makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle(t.opts.Title)
	systray.SetTooltip(t.opts.Title + " - " + t.opts.URL)

	if t.opts.Status != nil {
		for i, n := 0, len(t.opts.Status()); i < n; i++ {
			item := systray.AddMenuItem(playerLabel(gamepad.Frame{Player: i}), "")
			item.Disable()
			t.menuPlayers = append(t.menuPlayers, item)
		}
		systray.AddSeparator()
		go t.refreshPlayers()
	}

	if t.opts.Pause != nil {
		t.menuPause = systray.AddMenuItemCheckbox("Pause input", "Release the controllers", false)
	}
	t.menuOpen = systray.AddMenuItem("Open Browser", "Open web interface")
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	t.opts.Logger.Info("system tray initialized")
}

func playerLabel(f gamepad.Frame) string {
	if !f.State.Connected {
		return fmt.Sprintf("Player %d: not connected", f.Player+1)
	}
	return fmt.Sprintf("Player %d: %s", f.Player+1, f.Capabilities.Type)
}

func (t *Tray) refreshPlayers() {
	ticker := time.NewTicker(t.opts.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, f := range t.opts.Status() {
				if f.Player >= 0 && f.Player < len(t.menuPlayers) {
					t.menuPlayers[f.Player].SetTitle(playerLabel(f))
				}
			}
		case <-t.stop:
			return
		}
	}
}

// togglePause flips the paused state through opts.Pause and returns the
// state now in effect.
func (t *Tray) togglePause() bool {
	want := !t.paused.Load()
	if t.opts.Pause == nil || !t.opts.Pause(want) {
		return t.paused.Load()
	}
	t.paused.Store(want)
	return want
}

func (t *Tray) handleMenuClicks() {
	var pauseCh chan struct{}
	if t.menuPause != nil {
		pauseCh = t.menuPause.ClickedCh
	}
	for {
		select {
		case <-pauseCh:
			if t.togglePause() {
				t.menuPause.Check()
			} else {
				t.menuPause.Uncheck()
			}
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				if err := OpenBrowser(t.opts.URL); err != nil {
					t.opts.Logger.Warn("failed to open browser", "error", err)
				}
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.opts.Shutdown != nil {
					t.once.Do(t.opts.Shutdown)
				}
				systray.Quit()
				return
			}
		case <-t.stop:
			return
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	close(t.stop)
	t.opts.Logger.Info("system tray exiting")
}

// OpenBrowser opens url in the default web browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
