package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stormux/internal/config"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-c", "/tmp/x.toml", "--shell", "/bin/bash", "--fps", "60", "--", "-l"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.toml", f.configPath)
	assert.Equal(t, "/bin/bash", f.shell)
	assert.Equal(t, 60, f.fps)
	assert.Equal(t, -1, f.dumpTree)
	assert.Equal(t, []string{"-l"}, f.shellArgs)

	_, err = parseFlags([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "stormux.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nfps = 20\nscroll_step = 7\n\n[shell]\ncommand = \"/bin/zsh\"\n"), 0o600))
	t.Setenv("STORMUX_FPS", "25")

	cfg, err := loadConfig(&flags{configPath: path, fps: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Display.FPS)
	assert.Equal(t, 7, cfg.Display.ScrollStep)
	assert.Equal(t, path, cfg.Path)

	cfg, err = loadConfig(&flags{configPath: path})
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Display.FPS)
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig(&flags{shell: "/bin/sh", shellArgs: []string{"-i"}})
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", cfg.Shell.Command)
	assert.Equal(t, []string{"-i"}, cfg.Shell.Args)
	assert.Equal(t, config.DefaultFPS, cfg.Display.FPS)
	assert.Empty(t, cfg.Path)
}

func TestLoadConfigRejectsBadFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := loadConfig(&flags{fps: config.MaxFPS + 1})
	assert.ErrorIs(t, err, config.ErrValidationFailed)

	_, err = loadConfig(&flags{configPath: filepath.Join(t.TempDir(), "missing.toml")})
	assert.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestWatcherKeepsOverridesOnReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stormux.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display]\nscroll_step = 2\n"), 0o600))
	t.Setenv("STORMUX_SCROLL_STEP", "9")

	f := &flags{configPath: path, fps: 40, logLevel: "debug"}
	cfg, err := loadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Display.ScrollStep)

	w, err := config.NewWatcher(cfg.Path, config.WithOverlay(f.overlay))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[display]\nscroll_step = 5\nfps = 60\n\n[logging]\nlevel = \"warn\"\n"), 0o600))
	select {
	case cfg := <-w.Updates():
		assert.Equal(t, 9, cfg.Display.ScrollStep)
		assert.Equal(t, 40, cfg.Display.FPS)
		assert.Equal(t, "debug", cfg.Logging.Level)
	case err := <-w.Errors():
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
}
