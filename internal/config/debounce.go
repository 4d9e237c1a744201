package config

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer groups rapid successive calls into a single call after a quiet
// period. Editors often save a file as several write and rename events; the
// watcher reloads once per burst.
//
// All methods are safe for concurrent use. The callback is never run
// concurrently with itself by the debouncer.
type Debouncer struct {
	mu       sync.Mutex
	clock    clock.Clock
	delay    time.Duration
	timer    *clock.Timer
	pending  bool
	seq      uint64 // detects stale timer callbacks
	callback func()
}

// NewDebouncer creates a debouncer that runs callback once no call has been
// made for delay. A nil clock selects the wall clock.
func NewDebouncer(clk clock.Clock, delay time.Duration, callback func()) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{
		clock:    clk,
		delay:    delay,
		callback: callback,
	}
}

// Call schedules the callback, pushing back any call already scheduled.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending && d.seq == currentSeq {
			d.pending = false
			d.mu.Unlock()
			d.callback()
			return
		}
		d.mu.Unlock()
	})
}

// Flush runs a pending callback now instead of after the delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.callback()
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a call is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
