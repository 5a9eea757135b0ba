// Package config loads padview settings from flags, PADVIEW_* environment
// variables and an optional padview.{yaml,toml,json} file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soar/padview/internal/gamepad"
)

const (
	appName   = "padview"
	envPrefix = "PADVIEW"
)

var backends = []string{"sdl", "xinput", "replay", "null"}

type Retry struct {
	Disconnected time.Duration `mapstructure:"disconnected"`
	Other        time.Duration `mapstructure:"other"`
}

type Replay struct {
	File string `mapstructure:"file"`
}

type Sync struct {
	FullInterval time.Duration `mapstructure:"full-interval"`
	DeltaCount   int           `mapstructure:"delta-count"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Listen       string        `mapstructure:"listen"`
	Backend      string        `mapstructure:"backend"`
	DeadZone     string        `mapstructure:"deadzone"`
	Players      int           `mapstructure:"players"`
	PollInterval time.Duration `mapstructure:"poll-interval"`
	Tray         bool          `mapstructure:"tray"`
	Retry        Retry         `mapstructure:"retry"`
	Replay       Replay        `mapstructure:"replay"`
	Sync         Sync          `mapstructure:"sync"`
	Log          Log           `mapstructure:"log"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// Mode returns the parsed deadzone mode. Load has already validated it.
func (c *Config) Mode() gamepad.DeadZone {
	m, _ := gamepad.ParseDeadZone(c.DeadZone)
	return m
}

// URL is the address browsers should open.
func (c *Config) URL() string {
	host := c.Listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host
}

func defaultBackend() string {
	if runtime.GOOS == "windows" {
		return "xinput"
	}
	return "sdl"
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.String("config", "", "config file (default: padview.{yaml,toml,json} in . or the user config dir)")
	fs.String("listen", ":8080", "HTTP listen address")
	fs.String("backend", defaultBackend(), "gamepad backend: "+strings.Join(backends, ", "))
	fs.String("deadzone", "independent", "stick deadzone mode: independent, circular, none")
	fs.Int("players", gamepad.MaxPlayerCount, "number of player slots to poll")
	fs.Duration("poll-interval", 16*time.Millisecond, "time between polls")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	fs.Duration("retry.disconnected", gamepad.DefaultDisconnectedRetry, "wait before re-polling a disconnected player")
	fs.Duration("retry.other", gamepad.DefaultOtherPlayerRetry, "wait before polling other disconnected players after a failed read")
	fs.String("replay.file", "", "YAML script for the replay backend")
	fs.Duration("sync.full-interval", 5*time.Second, "interval between full state broadcasts")
	fs.Int("sync.delta-count", 100, "deltas sent before forcing a full state broadcast")
	fs.String("log.level", "info", "log level: trace, debug, info, warn, error")
	fs.String("log.file", "", "also write logs to this file")
	return fs
}

// Load parses args (without the program name) and returns a validated Config.
// pflag.ErrHelp is returned as is when -h was given.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName(appName)
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, appName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := gamepad.ParseDeadZone(c.DeadZone); err != nil {
		errs = append(errs, err)
	}

	known := false
	for _, b := range backends {
		if c.Backend == b {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(backends, ", ")))
	}
	if c.Backend == "replay" && c.Replay.File == "" {
		errs = append(errs, errors.New("backend replay needs replay.file"))
	}

	if c.Players < 1 || c.Players > gamepad.MaxPlayerCount {
		errs = append(errs, fmt.Errorf("players must be between 1 and %d, got %d", gamepad.MaxPlayerCount, c.Players))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval))
	}
	if c.Retry.Disconnected <= 0 || c.Retry.Other <= 0 {
		errs = append(errs, errors.New("retry intervals must be positive"))
	}
	if c.Sync.FullInterval <= 0 || c.Sync.DeltaCount <= 0 {
		errs = append(errs, errors.New("sync.full-interval and sync.delta-count must be positive"))
	}
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}

	return errors.Join(errs...)
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet().FlagUsages()
}
