// Package main is the entry point for stormux.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dshills/stormux/internal/app"
	"github.com/dshills/stormux/internal/config"
	"github.com/dshills/stormux/internal/integration/process"
	"github.com/dshills/stormux/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	configPath string
	shell      string
	logFile    string
	logLevel   string
	fps        int
	procRoot   string
	dumpTree   int
	version    bool
	help       bool
	shellArgs  []string
}

func main() {
	os.Exit(run())
}

func run() int {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if f.version {
		fmt.Printf("stormux %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	if f.dumpTree >= 0 {
		return dumpTree(f)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdin is not a terminal")
		return 1
	}

	logger := app.NewLogger(app.LoggerConfig{
		Level:      app.ParseLogLevel(cfg.Logging.Level),
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Prefix:     "stormux",
	})
	defer logger.Close()
	logger.Info("stormux %s (%s) config=%q", version, commit, cfg.Path)

	var watcher *config.Watcher
	if cfg.Path != "" {
		watcher, err = config.NewWatcher(cfg.Path, config.WithOverlay(f.overlay))
		if err != nil {
			logger.Warn("config watcher disabled: %v", err)
			watcher = nil
		}
	}

	screen, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	application, err := app.New(app.Options{
		Config:   cfg,
		Backend:  screen,
		Watcher:  watcher,
		Logger:   logger,
		ProcRoot: f.procRoot,
	})
	if err != nil {
		if watcher != nil {
			_ = watcher.Close()
		}
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// SIGINT and SIGTSTP belong to the sessions; these end the program.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fset := pflag.NewFlagSet("stormux", pflag.ContinueOnError)
	fset.StringVarP(&f.configPath, "config", "c", "", "Path to configuration file (default "+config.DefaultPath()+")")
	fset.StringVarP(&f.shell, "shell", "s", "", "Shell to start in each session (default $SHELL)")
	fset.StringVar(&f.logFile, "log-file", "", "Write diagnostics to this file")
	fset.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fset.IntVar(&f.fps, "fps", 0, "Frames per second")
	fset.StringVar(&f.procRoot, "proc", "", "Alternate /proc mount for session titles")
	fset.IntVar(&f.dumpTree, "dump-tree", -1, "Print the process tree below `pid` and exit (0 for stormux itself)")
	fset.BoolVarP(&f.version, "version", "v", false, "Show version information")

	fset.Usage = func() {
		fmt.Fprintf(os.Stderr, "stormux - terminal session multiplexer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: stormux [options] [-- shell arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fset.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  ctrl+c                      Toggle command mode\n")
		fmt.Fprintf(os.Stderr, "  shift+pgup / shift+pgdn     Scroll back / forward\n")
	}

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	f.shellArgs = fset.Args()
	return f, nil
}

// loadConfig layers defaults, the settings file, STORMUX_* variables and
// flags, in that order.
func loadConfig(f *flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath())
	}
	if err != nil {
		return nil, err
	}
	if err := f.overlay(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay applies STORMUX_* variables and then flags on top of a loaded
// file. The watcher runs it again on every reload.
func (f *flags) overlay(cfg *config.Config) error {
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if f.shell != "" {
		cfg.Shell.Command = f.shell
	}
	if len(f.shellArgs) > 0 {
		cfg.Shell.Args = f.shellArgs
	}
	if f.logFile != "" {
		cfg.Logging.File = config.ExpandHome(f.logFile)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.fps != 0 {
		cfg.Display.FPS = f.fps
	}
	return nil
}

func dumpTree(f *flags) int {
	pid := f.dumpTree
	if pid == 0 {
		pid = os.Getpid()
	}
	var opts []process.Option
	if f.procRoot != "" {
		opts = append(opts, process.WithRoot(f.procRoot))
	}
	tree := process.NewTree(opts...)
	if err := tree.Update(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !tree.Contains(pid) {
		fmt.Fprintf(os.Stderr, "Error: no process %d\n", pid)
		return 1
	}
	if err := tree.Dump(os.Stdout, pid); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
