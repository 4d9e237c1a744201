// Package config loads the stormux settings file.
//
// Settings come from four places, later ones overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. the settings file, TOML or YAML chosen by extension
//  3. STORMUX_* environment variables (ApplyEnv)
//  4. command line flags, applied by the caller
//
// A Watcher follows the settings file and delivers each successfully
// reloaded Config on a channel, so the application can apply new frame
// rate, title cadence, scroll step and status colours between ticks.
//
// # File format
//
//	[shell]
//	command = "/bin/zsh"
//	args = ["-l"]
//	history_lines = 10000
//	kill_grace = "2s"
//
//	[display]
//	fps = 30
//	title_refresh = 60
//	scroll_step = 5
//	status_fg = "white"
//	status_bg = "red"
//
//	[logging]
//	file = "~/.cache/stormux/stormux.log"
//	level = "info"
package config
