package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padview/internal/gamepad"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load([]string{"--backend", "null"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, gamepad.MaxPlayerCount, cfg.Players)
	assert.Equal(t, gamepad.DeadZoneIndependentAxes, cfg.Mode())
	assert.Equal(t, 16*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, time.Second, cfg.Retry.Disconnected)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Other)
	assert.Equal(t, 5*time.Second, cfg.Sync.FullInterval)
	assert.Equal(t, 100, cfg.Sync.DeltaCount)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, "http://localhost:8080", cfg.URL())
}

func TestLoadPrecedence(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, "padview.yaml", `
backend: null
deadzone: circular
players: 2
listen: 127.0.0.1:9000
retry:
  disconnected: 3s
sync:
  delta-count: 10
log:
  level: debug
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load([]string{"--config", path})
		require.NoError(t, err)
		assert.Equal(t, path, cfg.ConfigFile)
		assert.Equal(t, gamepad.DeadZoneCircular, cfg.Mode())
		assert.Equal(t, 2, cfg.Players)
		assert.Equal(t, 3*time.Second, cfg.Retry.Disconnected)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.Other)
		assert.Equal(t, 10, cfg.Sync.DeltaCount)
		assert.Equal(t, "http://127.0.0.1:9000", cfg.URL())
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("PADVIEW_PLAYERS", "3")
		t.Setenv("PADVIEW_RETRY_DISCONNECTED", "2s")
		t.Setenv("PADVIEW_LOG_LEVEL", "warn")
		cfg, err := Load([]string{"--config", path})
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Players)
		assert.Equal(t, 2*time.Second, cfg.Retry.Disconnected)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("PADVIEW_DEADZONE", "none")
		cfg, err := Load([]string{"--config", path, "--deadzone", "independent"})
		require.NoError(t, err)
		assert.Equal(t, gamepad.DeadZoneIndependentAxes, cfg.Mode())
	})
}

func TestLoadFindsFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "padview.toml"), []byte("backend = \"null\"\nplayers = 1\n"), 0o644))
	chdir(t, dir)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", cfg.Backend)
	assert.Equal(t, 1, cfg.Players)
	assert.Equal(t, "padview.toml", filepath.Base(cfg.ConfigFile))
}

func TestLoadErrors(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"deadzone", []string{"--backend", "null", "--deadzone", "square"}, "square"},
		{"backend", []string{"--backend", "dinput"}, "unknown backend"},
		{"replay without file", []string{"--backend", "replay"}, "replay.file"},
		{"too many players", []string{"--backend", "null", "--players", "5"}, "players"},
		{"no players", []string{"--backend", "null", "--players", "0"}, "players"},
		{"interval", []string{"--backend", "null", "--poll-interval", "0s"}, "poll-interval"},
		{"retry", []string{"--backend", "null", "--retry.other", "-1s"}, "retry"},
		{"sync", []string{"--backend", "null", "--sync.delta-count", "0"}, "sync"},
		{"missing file", []string{"--config", "/nonexistent/padview.yaml"}, "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"-h"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
	assert.Contains(t, Usage(), "--deadzone")
}
