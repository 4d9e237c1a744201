package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/stormux/internal/integration/terminal"
	"github.com/dshills/stormux/internal/renderer/backend"
)

// Defaults.
const (
	DefaultFPS          = 30
	DefaultTitleRefresh = 60
	DefaultScrollStep   = 5
	DefaultStatusFg     = "white"
	DefaultStatusBg     = "red"
	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
	DefaultLogBackups   = 3

	// MaxFPS bounds the scheduler rate.
	MaxFPS = 240
)

// LogLevels lists the accepted logging levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Duration is a time.Duration written as "2s" or "500ms" in settings files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ShellConfig controls the sessions.
type ShellConfig struct {
	// Command is the shell to start. Empty means $SHELL, then /bin/sh.
	Command string `toml:"command" yaml:"command"`

	// Args are passed to every shell.
	Args []string `toml:"args" yaml:"args"`

	// HistoryLines is the scrollback depth per session.
	HistoryLines int `toml:"history_lines" yaml:"history_lines"`

	// KillGrace is how long a hung-up session may take before it is killed.
	KillGrace Duration `toml:"kill_grace" yaml:"kill_grace"`
}

// DisplayConfig controls the scheduler and the status bar.
type DisplayConfig struct {
	// FPS is the number of scheduler ticks per second.
	FPS int `toml:"fps" yaml:"fps"`

	// TitleRefresh is the number of frames between title recomputes.
	TitleRefresh int `toml:"title_refresh" yaml:"title_refresh"`

	// ScrollStep is the number of rows one scroll key moves.
	ScrollStep int `toml:"scroll_step" yaml:"scroll_step"`

	// StatusFg and StatusBg colour the status bar. Names and #rrggbb values
	// are accepted.
	StatusFg string `toml:"status_fg" yaml:"status_fg"`
	StatusBg string `toml:"status_bg" yaml:"status_bg"`
}

// LoggingConfig controls the diagnostic log.
type LoggingConfig struct {
	// File is the log file. Empty disables logging; the terminal is busy.
	File string `toml:"file" yaml:"file"`

	// Level is one of LogLevels.
	Level string `toml:"level" yaml:"level"`

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int `toml:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" yaml:"max_backups"`
}

// Config is the complete settings tree.
type Config struct {
	Shell   ShellConfig   `toml:"shell" yaml:"shell"`
	Display DisplayConfig `toml:"display" yaml:"display"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`

	// Path is the file the settings were read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			HistoryLines: terminal.DefaultHistoryLines,
			KillGrace:    Duration{terminal.DefaultKillGrace},
		},
		Display: DisplayConfig{
			FPS:          DefaultFPS,
			TitleRefresh: DefaultTitleRefresh,
			ScrollStep:   DefaultScrollStep,
			StatusFg:     DefaultStatusFg,
			StatusBg:     DefaultStatusBg,
		},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogBackups,
		},
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "stormux", "config.toml")
}

// Load reads and validates the settings file at path on top of the
// defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.Logging.File = ExpandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			perr := &ParseError{Path: path, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, path, msg string, value any) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
		}
	}

	check(c.Shell.HistoryLines >= 0, "shell.history_lines", "must not be negative", c.Shell.HistoryLines)
	check(c.Shell.KillGrace.Duration >= 0, "shell.kill_grace", "must not be negative", c.Shell.KillGrace)
	check(c.Display.FPS >= 1 && c.Display.FPS <= MaxFPS, "display.fps", fmt.Sprintf("must be between 1 and %d", MaxFPS), c.Display.FPS)
	check(c.Display.TitleRefresh >= 1, "display.title_refresh", "must be at least 1", c.Display.TitleRefresh)
	check(c.Display.ScrollStep >= 1, "display.scroll_step", "must be at least 1", c.Display.ScrollStep)
	_, fgErr := backend.ParseColor(c.Display.StatusFg)
	check(fgErr == nil, "display.status_fg", "unknown color", c.Display.StatusFg)
	_, bgErr := backend.ParseColor(c.Display.StatusBg)
	check(bgErr == nil, "display.status_bg", "unknown color", c.Display.StatusBg)
	check(validLevel(c.Logging.Level), "logging.level", "must be one of "+strings.Join(LogLevels, ", "), c.Logging.Level)
	check(c.Logging.MaxSizeMB >= 0, "logging.max_size_mb", "must not be negative", c.Logging.MaxSizeMB)
	check(c.Logging.MaxBackups >= 0, "logging.max_backups", "must not be negative", c.Logging.MaxBackups)

	return errors.Join(errs...)
}

func validLevel(level string) bool {
	for _, l := range LogLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// StatusColors returns the parsed status bar colours. Unknown names fall
// back to the defaults.
func (c *Config) StatusColors() (fg, bg terminal.Color) {
	fg, err := backend.ParseColor(c.Display.StatusFg)
	if err != nil {
		fg, _ = backend.ParseColor(DefaultStatusFg)
	}
	bg, err = backend.ParseColor(c.Display.StatusBg)
	if err != nil {
		bg, _ = backend.ParseColor(DefaultStatusBg)
	}
	return fg, bg
}

// FrameInterval returns the time budget of one scheduler tick.
func (c *Config) FrameInterval() time.Duration {
	fps := c.Display.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// envMapping maps environment variables to setters.
var envMapping = map[string]func(c *Config, v string) error{
	"STORMUX_SHELL": func(c *Config, v string) error {
		c.Shell.Command = v
		return nil
	},
	"STORMUX_FPS": func(c *Config, v string) error {
		return setInt(&c.Display.FPS, v)
	},
	"STORMUX_SCROLL_STEP": func(c *Config, v string) error {
		return setInt(&c.Display.ScrollStep, v)
	},
	"STORMUX_LOG_FILE": func(c *Config, v string) error {
		c.Logging.File = ExpandHome(v)
		return nil
	},
	"STORMUX_LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = strings.ToLower(v)
		return nil
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// ApplyEnv overrides settings from STORMUX_* variables found through
// lookup, normally os.LookupEnv. The result is validated.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	for name, set := range envMapping {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			errs = append(errs, &ValidationError{Path: name, Message: err.Error(), Value: v})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return c.Validate()
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
