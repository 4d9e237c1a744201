package app

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Metrics tracks scheduler and session counters. All methods are safe for
// concurrent use; session exits are recorded from waiter goroutines.
type Metrics struct {
	clock clock.Clock

	// Frame timing
	frameCount    atomic.Uint64
	frameTotalNs  atomic.Int64
	frameMinNs    atomic.Int64
	frameMaxNs    atomic.Int64
	lastFrameNs   atomic.Int64
	droppedFrames atomic.Uint64

	// Input handling
	inputCount atomic.Uint64

	// Render timing
	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64

	// Orchestration
	signalCount     atomic.Uint64
	titleRefreshes  atomic.Uint64
	sessionsStarted atomic.Uint64
	sessionsExited  atomic.Uint64
	configReloads   atomic.Uint64

	// Start time for uptime calculation
	startTime atomic.Int64
}

// NewMetrics creates a new metrics tracker. A nil clock selects the wall
// clock.
func NewMetrics(clk clock.Clock) *Metrics {
	if clk == nil {
		clk = clock.New()
	}
	m := &Metrics{clock: clk}
	m.Reset()
	return m
}

// RecordFrame records the time one scheduler tick took.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	// Update min (atomic compare-and-swap loop)
	for {
		old := m.frameMinNs.Load()
		if ns >= old {
			break
		}
		if m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.frameMaxNs.Load()
		if ns <= old {
			break
		}
		if m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordDroppedFrame records a tick that overran its interval.
func (m *Metrics) RecordDroppedFrame() {
	m.droppedFrames.Add(1)
}

// RecordInput records one dispatched key event.
func (m *Metrics) RecordInput() {
	m.inputCount.Add(1)
}

// RecordRender records render timing.
func (m *Metrics) RecordRender(duration time.Duration) {
	m.renderCount.Add(1)
	m.renderTotalNs.Add(duration.Nanoseconds())
}

// RecordSignals records n applied signals.
func (m *Metrics) RecordSignals(n int) {
	if n > 0 {
		m.signalCount.Add(uint64(n))
	}
}

// RecordTitleRefresh records one process tree refresh.
func (m *Metrics) RecordTitleRefresh() {
	m.titleRefreshes.Add(1)
}

// RecordSessionStart records a started session.
func (m *Metrics) RecordSessionStart() {
	m.sessionsStarted.Add(1)
}

// RecordSessionExit records an exited session.
func (m *Metrics) RecordSessionExit() {
	m.sessionsExited.Add(1)
}

// RecordConfigReload records an applied settings reload.
func (m *Metrics) RecordConfigReload() {
	m.configReloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frameCount := m.frameCount.Load()
	renderCount := m.renderCount.Load()

	var avgFrameNs int64
	if frameCount > 0 {
		avgFrameNs = m.frameTotalNs.Load() / int64(frameCount)
	}

	var avgRenderNs int64
	if renderCount > 0 {
		avgRenderNs = m.renderTotalNs.Load() / int64(renderCount)
	}

	minFrameNs := m.frameMinNs.Load()
	if minFrameNs == 1<<63-1 {
		minFrameNs = 0
	}

	return MetricsSnapshot{
		Uptime:          m.clock.Since(time.Unix(0, m.startTime.Load())),
		FrameCount:      frameCount,
		AvgFrameTimeNs:  avgFrameNs,
		MinFrameTimeNs:  minFrameNs,
		MaxFrameTimeNs:  m.frameMaxNs.Load(),
		LastFrameNs:     m.lastFrameNs.Load(),
		DroppedFrames:   m.droppedFrames.Load(),
		InputCount:      m.inputCount.Load(),
		RenderCount:     renderCount,
		AvgRenderNs:     avgRenderNs,
		SignalCount:     m.signalCount.Load(),
		TitleRefreshes:  m.titleRefreshes.Load(),
		SessionsStarted: m.sessionsStarted.Load(),
		SessionsExited:  m.sessionsExited.Load(),
		ConfigReloads:   m.configReloads.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.frameCount.Store(0)
	m.frameTotalNs.Store(0)
	m.frameMinNs.Store(1<<63 - 1)
	m.frameMaxNs.Store(0)
	m.lastFrameNs.Store(0)
	m.droppedFrames.Store(0)
	m.inputCount.Store(0)
	m.renderCount.Store(0)
	m.renderTotalNs.Store(0)
	m.signalCount.Store(0)
	m.titleRefreshes.Store(0)
	m.sessionsStarted.Store(0)
	m.sessionsExited.Store(0)
	m.configReloads.Store(0)
	m.startTime.Store(m.clock.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime          time.Duration
	FrameCount      uint64
	AvgFrameTimeNs  int64
	MinFrameTimeNs  int64
	MaxFrameTimeNs  int64
	LastFrameNs     int64
	DroppedFrames   uint64
	InputCount      uint64
	RenderCount     uint64
	AvgRenderNs     int64
	SignalCount     uint64
	TitleRefreshes  uint64
	SessionsStarted uint64
	SessionsExited  uint64
	ConfigReloads   uint64
}

// AvgFPS returns the average frames per second.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.FrameCount == 0 || s.Uptime <= 0 {
		return 0
	}
	return float64(s.FrameCount) / s.Uptime.Seconds()
}

// DropRate returns the percentage of frames that overran their interval.
func (s MetricsSnapshot) DropRate() float64 {
	if s.FrameCount == 0 {
		return 0
	}
	return float64(s.DroppedFrames) / float64(s.FrameCount) * 100
}

// String summarises the snapshot on one line for the log.
func (s MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"uptime=%s frames=%d fps=%.1f avg_frame=%s max_frame=%s dropped=%.1f%% inputs=%d signals=%d titles=%d sessions=%d/%d reloads=%d",
		s.Uptime.Round(time.Millisecond),
		s.FrameCount,
		s.AvgFPS(),
		time.Duration(s.AvgFrameTimeNs),
		time.Duration(s.MaxFrameTimeNs),
		s.DropRate(),
		s.InputCount,
		s.SignalCount,
		s.TitleRefreshes,
		s.SessionsExited,
		s.SessionsStarted,
		s.ConfigReloads,
	)
}
