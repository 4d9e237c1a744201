package app

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics(clock.NewMock())

	snapshot := m.Snapshot()
	if snapshot.FrameCount != 0 {
		t.Errorf("expected 0 frame count, got %d", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != 0 {
		t.Errorf("expected 0 min frame time (sentinel handled), got %d", snapshot.MinFrameTimeNs)
	}
	if snapshot.Uptime != 0 {
		t.Errorf("expected 0 uptime on a stopped clock, got %s", snapshot.Uptime)
	}
}

func TestMetrics_RecordFrame(t *testing.T) {
	m := NewMetrics(clock.NewMock())

	m.RecordFrame(10 * time.Millisecond)
	m.RecordFrame(20 * time.Millisecond)
	m.RecordFrame(5 * time.Millisecond)

	snapshot := m.Snapshot()
	if snapshot.FrameCount != 3 {
		t.Errorf("expected 3 frames, got %d", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != int64(5*time.Millisecond) {
		t.Errorf("expected min 5ms, got %d ns", snapshot.MinFrameTimeNs)
	}
	if snapshot.MaxFrameTimeNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", snapshot.MaxFrameTimeNs)
	}
	if snapshot.LastFrameNs != int64(5*time.Millisecond) {
		t.Errorf("expected last 5ms, got %d ns", snapshot.LastFrameNs)
	}
	if snapshot.AvgFrameTimeNs != int64(35*time.Millisecond)/3 {
		t.Errorf("unexpected average %d ns", snapshot.AvgFrameTimeNs)
	}
}

func TestMetrics_DropRate(t *testing.T) {
	m := NewMetrics(clock.NewMock())

	for range 4 {
		m.RecordFrame(time.Millisecond)
	}
	m.RecordDroppedFrame()

	snapshot := m.Snapshot()
	if snapshot.DroppedFrames != 1 {
		t.Errorf("expected 1 dropped frame, got %d", snapshot.DroppedFrames)
	}
	if rate := snapshot.DropRate(); rate != 25 {
		t.Errorf("expected 25%% drop rate, got %.1f", rate)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(clock.NewMock())

	m.RecordInput()
	m.RecordInput()
	m.RecordSignals(3)
	m.RecordSignals(0)
	m.RecordTitleRefresh()
	m.RecordSessionStart()
	m.RecordSessionStart()
	m.RecordSessionExit()
	m.RecordConfigReload()
	m.RecordRender(2 * time.Millisecond)
	m.RecordRender(4 * time.Millisecond)

	s := m.Snapshot()
	if s.InputCount != 2 {
		t.Errorf("InputCount = %d, want 2", s.InputCount)
	}
	if s.SignalCount != 3 {
		t.Errorf("SignalCount = %d, want 3", s.SignalCount)
	}
	if s.TitleRefreshes != 1 {
		t.Errorf("TitleRefreshes = %d, want 1", s.TitleRefreshes)
	}
	if s.SessionsStarted != 2 || s.SessionsExited != 1 {
		t.Errorf("sessions = %d/%d, want 1/2", s.SessionsExited, s.SessionsStarted)
	}
	if s.ConfigReloads != 1 {
		t.Errorf("ConfigReloads = %d, want 1", s.ConfigReloads)
	}
	if s.RenderCount != 2 || s.AvgRenderNs != int64(3*time.Millisecond) {
		t.Errorf("render = %d avg %d", s.RenderCount, s.AvgRenderNs)
	}
}

func TestMetrics_UptimeAndFPS(t *testing.T) {
	clk := clock.NewMock()
	m := NewMetrics(clk)

	for range 60 {
		m.RecordFrame(time.Millisecond)
	}
	clk.Add(2 * time.Second)

	s := m.Snapshot()
	if s.Uptime != 2*time.Second {
		t.Errorf("Uptime = %s, want 2s", s.Uptime)
	}
	if fps := s.AvgFPS(); fps != 30 {
		t.Errorf("AvgFPS = %.1f, want 30", fps)
	}
}

func TestMetrics_Reset(t *testing.T) {
	clk := clock.NewMock()
	m := NewMetrics(clk)

	m.RecordFrame(time.Millisecond)
	m.RecordInput()
	clk.Add(time.Minute)
	m.Reset()

	s := m.Snapshot()
	if s.FrameCount != 0 || s.InputCount != 0 {
		t.Errorf("expected cleared counters, got %+v", s)
	}
	if s.Uptime != 0 {
		t.Errorf("expected uptime restarted, got %s", s.Uptime)
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics(clock.NewMock())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				m.RecordFrame(time.Duration(i+1) * time.Microsecond)
				m.RecordSessionExit()
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.FrameCount != 800 {
		t.Errorf("FrameCount = %d, want 800", s.FrameCount)
	}
	if s.MinFrameTimeNs != int64(time.Microsecond) || s.MaxFrameTimeNs != int64(100*time.Microsecond) {
		t.Errorf("min/max = %d/%d", s.MinFrameTimeNs, s.MaxFrameTimeNs)
	}
	if s.SessionsExited != 800 {
		t.Errorf("SessionsExited = %d, want 800", s.SessionsExited)
	}
}

func TestMetricsSnapshot_String(t *testing.T) {
	m := NewMetrics(clock.NewMock())
	m.RecordSessionStart()
	m.RecordFrame(time.Millisecond)

	out := m.Snapshot().String()
	for _, want := range []string{"frames=1", "sessions=0/1", "dropped=0.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() = %q, missing %q", out, want)
		}
	}
}
