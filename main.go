package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncruces/zenity"
	"github.com/spf13/pflag"

	"github.com/soar/padview/internal/config"
	"github.com/soar/padview/internal/console"
	"github.com/soar/padview/internal/gamepad"
	"github.com/soar/padview/internal/gamepad/replay"
	"github.com/soar/padview/internal/gamepad/sdlpad"
	"github.com/soar/padview/internal/gamepad/xinput"
	"github.com/soar/padview/internal/hub"
	plog "github.com/soar/padview/internal/log"
	"github.com/soar/padview/internal/server"
	"github.com/soar/padview/internal/tray"
)

const appName = "padview"

// os.Interrupt is Ctrl+C on every platform.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	fromConsole := console.IsRunningFromConsole()

	if err := run(os.Args[1:], fromConsole); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("fatal", "error", err)
		if !fromConsole {
			_ = zenity.Error(err.Error(), zenity.Title(appName), zenity.ErrorIcon)
		}
		os.Exit(1)
	}
}

func run(args []string, fromConsole bool) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, closers, err := plog.SetupLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	if cfg.ConfigFile != "" {
		logger.Info("config loaded", "file", cfg.ConfigFile)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	defer signal.Stop(sigCh)

	// Closed by the Windows console handler on Ctrl+C.
	consoleShutdown := make(chan struct{})
	reregister := console.SetupConsoleHandler(consoleShutdown, logger)

	reader := gamepad.NewReader(func() (gamepad.Device, error) {
		dev, err := openBackend(cfg, logger)
		// SDL installs its own console handler during init.
		reregister()
		return dev, err
	}, gamepad.ReaderOptions{
		Mode:         cfg.Mode(),
		PollInterval: cfg.PollInterval,
		Players:      cfg.Players,
		RetryOwn:     cfg.Retry.Disconnected,
		RetryOther:   cfg.Retry.Other,
		Logger:       logger.With("component", "reader"),
	})

	h := hub.NewHub(logger.With("component", "hub"))
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, reader.Changes(), hub.BroadcasterOptions{
		FullSyncInterval: cfg.Sync.FullInterval,
		DeltaCountSync:   cfg.Sync.DeltaCount,
		Logger:           logger.With("component", "broadcaster"),
	})
	go broadcaster.Run(ctx)

	srv := server.New(h, broadcaster, reader, getFrontendFS(), cfg.Listen, logger.With("component", "server"))
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			serverErrCh <- err
		}
	}()

	readerErrCh := make(chan error, 1)
	go func() {
		readerErrCh <- reader.Run(ctx)
	}()

	logger.Info(appName+" started", "url", cfg.URL(), "backend", cfg.Backend, "deadzone", cfg.Mode())

	trayShutdown := make(chan struct{})
	var t *tray.Tray
	if cfg.Tray {
		t = tray.New(tray.Options{
			Title:    appName,
			URL:      cfg.URL(),
			Status:   reader.Frames,
			Pause:    pauseFunc(ctx, reader),
			Shutdown: func() { close(trayShutdown) },
			Logger:   logger.With("component", "tray"),
		})
		go t.Run(tray.GetIcon())
	}
	if fromConsole {
		logger.Info("press Ctrl+C to exit")
	} else if err := tray.OpenBrowser(cfg.URL()); err != nil {
		logger.Warn("failed to open browser", "error", err)
	}

	var runErr error
	readerStopped := false
	select {
	case <-sigCh:
		logger.Info("shutting down")
	case <-consoleShutdown:
		logger.Info("shutting down")
	case <-trayShutdown:
		logger.Info("shutdown requested from tray")
	case err := <-serverErrCh:
		runErr = fmt.Errorf("HTTP server: %w", err)
	case err := <-readerErrCh:
		// The reader only stops on its own when the backend cannot be opened.
		readerStopped = true
		runErr = err
	}
	cancel()

	if !readerStopped {
		if err := waitReader(readerErrCh, 5*time.Second); err != nil && runErr == nil {
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", "error", err)
	}
	if t != nil {
		t.Quit()
	}

	logger.Info(appName + " stopped")
	return runErr
}

// pauseFunc lets the tray suspend and resume polling.
func pauseFunc(ctx context.Context, reader *gamepad.Reader) tray.PauseFunc {
	return func(paused bool) bool {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if paused {
			return reader.Suspend(ctx)
		}
		return reader.Resume(ctx)
	}
}

func waitReader(errCh <-chan error, timeout time.Duration) error {
	select {
	case err := <-errCh:
		return err
	case <-time.After(timeout):
		return errors.New("gamepad reader did not stop in time")
	}
}

func openBackend(cfg *config.Config, logger *slog.Logger) (gamepad.Device, error) {
	logger = logger.With("backend", cfg.Backend)
	switch cfg.Backend {
	case "sdl":
		dev, err := sdlpad.Open(logger)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case "xinput":
		return xinput.Open(logger)
	case "replay":
		dev, err := replay.Open(cfg.Replay.File, logger)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case "null":
		return gamepad.NullDevice{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
