package signals

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/dshills/stormux/internal/input/keymap"
)

// DefaultQueueSize is the number of pending signals a Bridge holds.
const DefaultQueueSize = 16

// Signal is a request delivered to the multiplexer.
type Signal uint8

const (
	// Interrupt toggles between passthrough and command mode.
	Interrupt Signal = iota + 1

	// Suspend forwards the suspend byte to the focused session.
	Suspend
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case Interrupt:
		return "interrupt"
	case Suspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// FromOS maps an OS signal to a bridge signal.
func FromOS(sig os.Signal) (Signal, bool) {
	switch sig {
	case syscall.SIGINT:
		return Interrupt, true
	case syscall.SIGTSTP:
		return Suspend, true
	default:
		return 0, false
	}
}

// Target receives drained signals.
type Target interface {
	// ToggleCancel applies the cancel transition of the mode machine.
	ToggleCancel()

	// Forward writes b to the focused session regardless of mode.
	Forward(b []byte)
}

// Bridge queues signals until the loop drains them.
type Bridge struct {
	queue   chan Signal
	dropped atomic.Uint64

	mu      sync.Mutex
	osCh    chan os.Signal
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewBridge creates a bridge holding up to size pending signals.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Bridge{queue: make(chan Signal, size)}
}

// Start subscribes to SIGINT and SIGTSTP. Calling Start twice is a no-op.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true
	b.osCh = make(chan os.Signal, cap(b.queue))
	b.stop = make(chan struct{})
	signal.Notify(b.osCh, syscall.SIGINT, syscall.SIGTSTP)

	b.wg.Add(1)
	go b.relay(b.osCh, b.stop)
}

func (b *Bridge) relay(osCh <-chan os.Signal, stop <-chan struct{}) {
	defer b.wg.Done()
	for {
		select {
		case sig := <-osCh:
			if s, ok := FromOS(sig); ok {
				b.Raise(s)
			}
		case <-stop:
			return
		}
	}
}

// Stop unsubscribes from OS signals and restores their default handling.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	signal.Stop(b.osCh)
	close(b.stop)
	b.mu.Unlock()
	b.wg.Wait()
}

// Raise queues sig. It reports false when the queue was full and the signal
// was dropped.
func (b *Bridge) Raise(sig Signal) bool {
	select {
	case b.queue <- sig:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Drain applies every queued signal to t in arrival order and returns how
// many were applied.
func (b *Bridge) Drain(t Target) int {
	n := 0
	for {
		select {
		case sig := <-b.queue:
			apply(t, sig)
			n++
		default:
			return n
		}
	}
}

// Pending returns the number of queued signals.
func (b *Bridge) Pending() int {
	return len(b.queue)
}

// Dropped returns the number of signals lost to a full queue.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

func apply(t Target, sig Signal) {
	switch sig {
	case Interrupt:
		t.ToggleCancel()
	case Suspend:
		t.Forward(keymap.SuspendBytes)
	}
}
