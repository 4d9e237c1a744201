package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay is the quiet period after the last change before the
// file is reloaded.
const DefaultReloadDelay = 50 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*watcherOptions)

type watcherOptions struct {
	clock   clock.Clock
	delay   time.Duration
	overlay func(*Config) error
}

// WithReloadDelay sets the quiet period before a reload. Zero reloads on
// every event.
func WithReloadDelay(d time.Duration) WatcherOption {
	return func(o *watcherOptions) {
		o.delay = d
	}
}

// WithWatcherClock sets the clock the reload delay is measured on.
func WithWatcherClock(clk clock.Clock) WatcherOption {
	return func(o *watcherOptions) {
		o.clock = clk
	}
}

// WithOverlay sets a function applied to every reloaded Config before it is
// validated and delivered. It carries the layers above the file, such as
// environment and command line overrides.
func WithOverlay(fn func(*Config) error) WatcherOption {
	return func(o *watcherOptions) {
		o.overlay = fn
	}
}

// Watcher reloads a settings file whenever it changes on disk. The parent
// directory is watched so that editors replacing the file by rename are
// followed too.
type Watcher struct {
	mu sync.Mutex

	path     string
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	reloadCh chan struct{}
	overlay  func(*Config) error

	// Output channels
	updates chan *Config
	errors  chan error

	// Lifecycle
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	o := watcherOptions{delay: DefaultReloadDelay}
	for _, opt := range opts {
		opt(&o)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		fsw:      fsw,
		reloadCh: make(chan struct{}, 1),
		overlay:  o.overlay,
		updates:  make(chan *Config, 1),
		errors:   make(chan error, 8),
		closeCh:  make(chan struct{}),
	}
	if o.delay > 0 {
		w.debounce = NewDebouncer(o.clock, o.delay, w.requestReload)
	}
	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Updates delivers reloaded settings. Only the newest pending Config is
// kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Errors delivers reload and watch failures. Errors are dropped when
// nobody reads them.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. The channels are left open.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Cancel()
	}
	w.closedWg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			if w.debounce != nil {
				w.debounce.Call()
				continue
			}
			w.reload()

		case <-w.reloadCh:
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

// requestReload hands a debounced reload to processLoop.
func (w *Watcher) requestReload() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err == nil && w.overlay != nil {
		if err = w.overlay(cfg); err == nil {
			err = cfg.Validate()
		}
	}
	if err != nil {
		w.sendError(err)
		return
	}
	// processLoop is the only sender, so the drain cannot race.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		// Channel full, drop error
	}
}
