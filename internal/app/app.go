// Package app provides the main application structure and coordination
// for stormux. It wires the multiplexer to the terminal backend, the signal
// bridge and the settings watcher, and runs the frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dshills/stormux/internal/config"
	"github.com/dshills/stormux/internal/input/key"
	"github.com/dshills/stormux/internal/integration/process"
	"github.com/dshills/stormux/internal/integration/signals"
	"github.com/dshills/stormux/internal/integration/terminal"
	"github.com/dshills/stormux/internal/mux"
	"github.com/dshills/stormux/internal/renderer/backend"
)

// eventQueueSize is the number of backend events buffered between the
// input pump and the loop.
const eventQueueSize = 64

// shutdownSlack is added to the kill grace when waiting for sessions on exit.
const shutdownSlack = time.Second

// Application is the central coordinator for all stormux components.
// It owns the session group and runs the frame loop.
type Application struct {
	// Configuration
	cfg      *config.Config
	interval time.Duration
	statusFg terminal.Color
	statusBg terminal.Color

	// Components
	backend *backend.BufferedBackend
	group   *terminal.Group
	tree    *process.Tree
	titles  process.TitleResolver
	mux     *mux.Multiplexer
	bridge  *signals.Bridge
	watcher *config.Watcher

	// Infrastructure
	clock   clock.Clock
	logger  *Logger
	metrics *Metrics

	// Input pump
	events   chan backend.Event
	stop     chan struct{}
	pumpDone chan struct{}

	// State
	ctx     context.Context
	running atomic.Bool
}

// Options configures the application.
type Options struct {
	// Config holds the settings. Nil selects config.Default().
	Config *config.Config

	// Backend is the terminal to draw on. Required.
	Backend backend.Backend

	// Watcher delivers settings reloads. Optional.
	Watcher *config.Watcher

	// Clock drives the frame scheduler. Nil selects the wall clock.
	Clock clock.Clock

	// Logger receives diagnostics. Nil discards them.
	Logger *Logger

	// ProcRoot overrides the /proc mount used for session titles.
	ProcRoot string
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Backend == nil {
		return nil, &InitError{Component: "backend", Err: errors.New("no backend")}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = NullLogger
	}

	app := &Application{
		cfg:      cfg,
		interval: cfg.FrameInterval(),
		backend:  backend.NewBufferedBackend(opts.Backend),
		bridge:   signals.NewBridge(signals.DefaultQueueSize),
		watcher:  opts.Watcher,
		clock:    clk,
		logger:   logger,
		metrics:  NewMetrics(clk),
		events:   make(chan backend.Event, eventQueueSize),
		stop:     make(chan struct{}),
		pumpDone: make(chan struct{}),
		ctx:      context.Background(),
	}
	app.statusFg, app.statusBg = cfg.StatusColors()

	var treeOpts []process.Option
	if opts.ProcRoot != "" {
		treeOpts = append(treeOpts, process.WithRoot(opts.ProcRoot))
	}
	app.tree = process.NewTree(treeOpts...)
	app.titles = countingResolver{TitleResolver: process.NewResolver(app.tree), metrics: app.metrics}

	sessionLog := logger.WithComponent("session")
	app.group = terminal.NewGroup(terminal.GroupConfig{
		Shell:        cfg.Shell.Command,
		Args:         cfg.Shell.Args,
		HistoryLines: cfg.Shell.HistoryLines,
		KillGrace:    cfg.Shell.KillGrace.Duration,
		Clock:        clk,
		OnExit: func(s *terminal.Session, err error) {
			app.metrics.RecordSessionExit()
			if err != nil {
				sessionLog.Debug("session %s pid=%d exited: %v", s.ID(), s.PID(), err)
				return
			}
			sessionLog.Debug("session %s pid=%d exited", s.ID(), s.PID())
		},
	})

	return app, nil
}

// Run starts the application main loop. It blocks until every session has
// exited, ctx is cancelled, or an error escapes the loop. Sessions are torn
// down on every exit path; a panic is re-raised after teardown.
func (app *Application) Run(ctx context.Context) (err error) {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	go app.pump()
	defer func() {
		close(app.stop)
		app.backend.Shutdown()
		<-app.pumpDone
	}()

	app.bridge.Start()
	defer app.bridge.Stop()

	app.ctx = ctx
	defer func() {
		if r := recover(); r != nil {
			app.logger.Error("panic in loop: %v", NewRecoveredPanicError(r, string(debug.Stack())))
			app.teardown()
			panic(r)
		}
		if terr := app.teardown(); terr != nil && err == nil {
			err = terr
		}
		if err != nil {
			app.logger.Error("exit: %v", err)
		}
	}()

	width, height := app.backend.Size()
	app.mux = mux.New(
		groupFactory{group: app.group, metrics: app.metrics},
		app.titles,
		app,
		width,
		max(height-1, 1),
		mux.WithScrollStep(app.cfg.Display.ScrollStep),
		mux.WithTitleRefresh(app.cfg.Display.TitleRefresh),
		mux.WithLogger(app.logger.WithComponent("mux")),
	)
	if _, err := app.mux.AddSession(); err != nil {
		return NewComponentError("mux", "start", err)
	}
	app.logger.Info("started %dx%d at %s per frame", width, height, app.interval)

	return app.loop(ctx)
}

// loop runs frames until no session is left or ctx is done.
func (app *Application) loop(ctx context.Context) error {
	for {
		start := app.clock.Now()

		if !app.mux.Reconcile() {
			app.logger.Info("no sessions left")
			return nil
		}
		app.metrics.RecordSignals(app.bridge.Drain(app.mux))
		app.applyReloads()

		select {
		case ev := <-app.events:
			if err := app.handleEvent(ev); err != nil {
				return err
			}
		default:
		}

		app.render()

		elapsed := app.clock.Since(start)
		app.metrics.RecordFrame(elapsed)
		wait := app.interval - elapsed
		if wait < 0 {
			app.metrics.RecordDroppedFrame()
			wait = 0
		}
		select {
		case <-ctx.Done():
			return nil
		case <-app.clock.After(wait):
		}
	}
}

// handleEvent applies one backend event.
func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		app.metrics.RecordInput()
		if sig, ok := signalFor(ev.Key); ok {
			if !app.bridge.Raise(sig) {
				app.logger.Warn("signal queue full, dropped %s", sig)
			}
			return nil
		}
		if err := app.mux.Dispatch(ev.Key); err != nil {
			return NewComponentError("mux", "dispatch", err)
		}
	case backend.EventResize:
		app.backend.Resize()
		app.backend.Sync()
	case backend.EventClosed:
		return ErrBackendClosed
	}
	return nil
}

// signalFor maps the control characters the terminal delivers as keys in
// raw mode to the signals they stand for. A tty reports them with ModCtrl;
// any other modifier means a different chord.
func signalFor(ev key.Event) (signals.Signal, bool) {
	if ev.Key != key.KeyRune || ev.Modifiers&^key.ModCtrl != key.ModNone {
		return 0, false
	}
	switch ev.Rune {
	case 0x03:
		return signals.Interrupt, true
	case 0x1a:
		return signals.Suspend, true
	}
	return 0, false
}

// applyReloads takes at most one settings update or reload error.
func (app *Application) applyReloads() {
	if app.watcher == nil {
		return
	}
	select {
	case cfg := <-app.watcher.Updates():
		app.applyConfig(cfg)
	case err := <-app.watcher.Errors():
		app.logger.Warn("config reload: %v", err)
	default:
	}
}

// applyConfig switches the settings the loop reads every frame. Shell
// settings only affect sessions created afterwards through the group and
// are left alone.
func (app *Application) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	app.cfg = cfg
	app.interval = cfg.FrameInterval()
	app.statusFg, app.statusBg = cfg.StatusColors()
	app.mux.SetScrollStep(cfg.Display.ScrollStep)
	app.mux.SetTitleRefresh(cfg.Display.TitleRefresh)
	app.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	app.metrics.RecordConfigReload()
	app.logger.Info("reloaded %s", cfg.Path)
}

// pump forwards backend events to the loop until the backend closes or Run
// returns.
func (app *Application) pump() {
	defer close(app.pumpDone)
	for {
		ev := app.backend.PollEvent()
		select {
		case app.events <- ev:
		case <-app.stop:
			return
		}
		if ev.Type == backend.EventClosed {
			return
		}
	}
}

// teardown shuts every session down and closes the watcher.
func (app *Application) teardown() error {
	var errs []error

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.Shell.KillGrace.Duration+shutdownSlack)
	defer cancel()
	if err := app.group.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrShutdownTimeout, err))
	}

	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil && !errors.Is(err, config.ErrWatcherClosed) {
			errs = append(errs, NewComponentError("config", "close watcher", err))
		}
	}

	app.logger.Info("metrics: %s", app.metrics.Snapshot())
	return errors.Join(errs...)
}

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Multiplexer returns the multiplexer. It is nil until Run has started.
func (app *Application) Multiplexer() *mux.Multiplexer {
	return app.mux
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
