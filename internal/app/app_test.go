package app

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stormux/internal/config"
	"github.com/dshills/stormux/internal/input/key"
	"github.com/dshills/stormux/internal/integration/signals"
	"github.com/dshills/stormux/internal/renderer/backend"
)

const (
	testWidth  = 60
	testHeight = 8
	waitFor    = 5 * time.Second
	tick       = 10 * time.Millisecond
)

// A simulated tty always starts at 80x25.
const (
	ttyWidth  = 80
	ttyHeight = 25
)

type runningApp struct {
	app    *Application
	cancel context.CancelFunc
	done   chan error

	// Exactly one of nb and term is set.
	nb     *backend.NullBackend
	term   *backend.Terminal
	sim    tcell.SimulationScreen
	height int
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	cfg := config.Default()
	cfg.Shell.Command = sh
	cfg.Shell.KillGrace = config.Duration{Duration: 200 * time.Millisecond}
	cfg.Display.FPS = 200
	return cfg
}

// readyTerminal reports when Run has initialised the screen, so the test
// only touches the simulation once it is set up.
type readyTerminal struct {
	*backend.Terminal
	ready chan struct{}
}

func (r *readyTerminal) Init() error {
	err := r.Terminal.Init()
	close(r.ready)
	return err
}

func startApp(t *testing.T, cfg *config.Config) *runningApp {
	t.Helper()
	nb := backend.NewNullBackend(testWidth, testHeight)
	r := &runningApp{nb: nb, height: testHeight}
	r.run(t, cfg, nb, nil)
	return r
}

// startTTYApp runs the application on a simulated tcell screen so keys take
// the same decoding path as on a real terminal.
func startTTYApp(t *testing.T, cfg *config.Config) *runningApp {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term := &readyTerminal{Terminal: backend.NewTerminalWithScreen(sim), ready: make(chan struct{})}
	r := &runningApp{term: term.Terminal, sim: sim, height: ttyHeight}
	r.run(t, cfg, term, term.ready)
	return r
}

func (r *runningApp) run(t *testing.T, cfg *config.Config, b backend.Backend, ready <-chan struct{}) {
	t.Helper()
	app, err := New(Options{Config: cfg, Backend: b})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r.app, r.cancel, r.done = app, cancel, make(chan error, 1)
	go func() { r.done <- app.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-r.done:
		case <-time.After(waitFor):
			t.Error("Run did not return")
		}
	})

	if ready != nil {
		select {
		case <-ready:
		case <-time.After(waitFor):
			t.Fatal("screen never initialised")
		}
	}
	require.Eventually(t, func() bool {
		return strings.Contains(r.status(), "0:")
	}, waitFor, tick, "status bar never drawn")
}

func (r *runningApp) press(ev key.Event) {
	r.nb.PostEvent(backend.KeyEvent(ev))
}

// ctrl sends a control byte. On the simulated tty it is posted the way
// tcell's tty input decoder reports it.
func (r *runningApp) ctrl(t *testing.T, b byte) {
	t.Helper()
	var ev *tcell.EventKey
	switch b {
	case '\r':
		ev = tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	case 0x1b:
		ev = tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	default:
		ev = tcell.NewEventKey(tcell.KeyCtrlSpace+tcell.Key(b), 0, tcell.ModCtrl)
	}
	if r.nb != nil {
		r.nb.PostEvent(backend.KeyEvent(controlEvent(b)))
		return
	}
	require.Eventually(t, func() bool {
		return r.sim.PostEvent(ev) == nil
	}, waitFor, tick, "event queue full")
}

func controlEvent(b byte) key.Event {
	switch b {
	case '\r':
		return key.NewSpecialEvent(key.KeyEnter)
	case 0x1b:
		return key.NewSpecialEvent(key.KeyEscape)
	}
	return key.NewEvent(key.KeyRune, rune(b), key.ModCtrl)
}

// typeText sends printable text, as raw bytes on the simulated tty.
func (r *runningApp) typeText(text string) {
	if r.nb != nil {
		for _, c := range text {
			r.press(key.NewRuneEvent(c))
		}
		return
	}
	r.sim.InjectKeyBytes([]byte(text))
}

func (r *runningApp) line(y int) string {
	if r.nb != nil {
		return r.nb.Line(y)
	}
	var sb strings.Builder
	for x := range ttyWidth {
		c := r.term.GetCell(x, y)
		if c.Width == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

func (r *runningApp) status() string {
	return r.line(r.height - 1)
}

func (r *runningApp) cursor() (x, y int, visible bool) {
	if r.nb != nil {
		return r.nb.CursorPosition()
	}
	return r.sim.GetCursor()
}

func (r *runningApp) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		r.done <- err
		return err
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
		return nil
	}
}

func (r *runningApp) enterCommandMode(t *testing.T) {
	t.Helper()
	r.ctrl(t, 0x03)
	require.Eventually(t, func() bool {
		return r.line(0) == "COMMAND MODE"
	}, waitFor, tick, "help screen never shown")
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitialization)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Display.FPS = -1
	_, err := New(Options{Config: cfg, Backend: backend.NewNullBackend(10, 3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrValidationFailed)
}

func TestSignalFor(t *testing.T) {
	sig, ok := signalFor(key.NewRuneEvent(0x03))
	assert.True(t, ok)
	assert.Equal(t, signals.Interrupt, sig)

	sig, ok = signalFor(key.NewRuneEvent(0x1a))
	assert.True(t, ok)
	assert.Equal(t, signals.Suspend, sig)

	sig, ok = signalFor(key.NewEvent(key.KeyRune, 0x03, key.ModCtrl))
	assert.True(t, ok)
	assert.Equal(t, signals.Interrupt, sig)

	sig, ok = signalFor(key.NewEvent(key.KeyRune, 0x1a, key.ModCtrl))
	assert.True(t, ok)
	assert.Equal(t, signals.Suspend, sig)

	_, ok = signalFor(key.NewRuneEvent('c'))
	assert.False(t, ok)
	_, ok = signalFor(key.NewEvent(key.KeyRune, 0x03, key.ModAlt))
	assert.False(t, ok)
	_, ok = signalFor(key.NewEvent(key.KeyRune, 0x03, key.ModCtrl|key.ModAlt))
	assert.False(t, ok)
	_, ok = signalFor(key.NewSpecialEvent(key.KeyEnter))
	assert.False(t, ok)
}

func TestRunStatusBar(t *testing.T) {
	r := startApp(t, testConfig(t))

	assert.True(t, strings.HasPrefix(r.status(), "_0:"), r.status())

	fg, bg := config.Default().StatusColors()
	cell := r.nb.GetCell(testWidth-1, testHeight-1)
	assert.Equal(t, fg, cell.Fg)
	assert.Equal(t, bg, cell.Bg)
	assert.True(t, r.app.IsRunning())
}

func TestRunEchoesInput(t *testing.T) {
	r := startApp(t, testConfig(t))

	r.typeText("echo stormux-ok")
	r.press(key.NewSpecialEvent(key.KeyEnter))

	require.Eventually(t, func() bool {
		for y := 0; y < testHeight-1; y++ {
			if strings.TrimSpace(r.line(y)) == "stormux-ok" {
				return true
			}
		}
		return false
	}, waitFor, tick, "command output never shown")
	assert.GreaterOrEqual(t, r.app.Metrics().Snapshot().InputCount, uint64(len("echo stormux-ok")+1))
}

func TestRunCloseAllExits(t *testing.T) {
	r := startTTYApp(t, testConfig(t))

	r.enterCommandMode(t)
	r.typeText("e")

	require.NoError(t, r.wait(t))
	assert.False(t, r.app.IsRunning())

	s := r.app.Metrics().Snapshot()
	assert.Equal(t, uint64(1), s.SessionsStarted)
	assert.Equal(t, uint64(1), s.SessionsExited)
	assert.GreaterOrEqual(t, s.SignalCount, uint64(1))
}

func TestRunToggleBackToPassthrough(t *testing.T) {
	r := startTTYApp(t, testConfig(t))

	r.enterCommandMode(t)
	r.ctrl(t, 0x03)
	require.Eventually(t, func() bool {
		return r.line(0) != "COMMAND MODE"
	}, waitFor, tick)
	assert.GreaterOrEqual(t, r.app.Metrics().Snapshot().SignalCount, uint64(2))
}

func TestRunCtrlLettersReachShell(t *testing.T) {
	r := startTTYApp(t, testConfig(t))

	// Ctrl+U clears the partial line and DEL erases the trailing x, so only
	// the echo runs.
	r.typeText("junk")
	r.ctrl(t, 0x15)
	r.typeText("echo tty-okx\x7f")
	r.ctrl(t, '\r')

	require.Eventually(t, func() bool {
		for y := 0; y < r.height-1; y++ {
			if strings.TrimSpace(r.line(y)) == "tty-ok" {
				return true
			}
		}
		return false
	}, waitFor, tick, "command output never shown")
	assert.NotEqual(t, "COMMAND MODE", r.line(0))
}

func TestRunSuspendKeyForwarded(t *testing.T) {
	r := startTTYApp(t, testConfig(t))

	r.ctrl(t, 0x1a)
	require.Eventually(t, func() bool {
		return r.app.Metrics().Snapshot().SignalCount >= 1
	}, waitFor, tick, "suspend never bridged")
	assert.NotEqual(t, "COMMAND MODE", r.line(0))
}

func TestRunNewAndSelect(t *testing.T) {
	r := startTTYApp(t, testConfig(t))

	r.enterCommandMode(t)
	r.typeText("n")
	require.Eventually(t, func() bool {
		return strings.HasPrefix(r.status(), "0:") && strings.Contains(r.status(), "_1:")
	}, waitFor, tick, "second session never focused")

	// Creating a session returns to passthrough.
	r.enterCommandMode(t)
	r.typeText("i")
	require.Eventually(t, func() bool {
		return strings.HasPrefix(r.status(), "enter index:")
	}, waitFor, tick, "prompt never shown")

	_, y, visible := r.cursor()
	assert.True(t, visible)
	assert.Equal(t, r.height-1, y)

	r.typeText("7\x7f0")
	r.ctrl(t, '\r')
	require.Eventually(t, func() bool {
		return strings.HasPrefix(r.status(), "_0:")
	}, waitFor, tick, "focus never moved to session 0")
}

func TestRunPromptCancelled(t *testing.T) {
	r := startTTYApp(t, testConfig(t))

	r.enterCommandMode(t)
	r.typeText("i")
	require.Eventually(t, func() bool {
		return strings.HasPrefix(r.status(), "enter index:")
	}, waitFor, tick)

	r.typeText("1")
	r.ctrl(t, 0x1b)
	require.Eventually(t, func() bool {
		return strings.HasPrefix(r.status(), "_0:")
	}, waitFor, tick)
	assert.Equal(t, "COMMAND MODE", r.line(0))
}

func TestRunContextCancelTearsDown(t *testing.T) {
	r := startApp(t, testConfig(t))

	r.cancel()
	require.NoError(t, r.wait(t))
	assert.Equal(t, 0, r.app.group.Len())
	assert.Equal(t, uint64(1), r.app.Metrics().Snapshot().SessionsExited)
}

func TestRunBackendClosed(t *testing.T) {
	r := startApp(t, testConfig(t))

	r.nb.Shutdown()
	err := r.wait(t)
	assert.True(t, errors.Is(err, ErrBackendClosed), "got %v", err)
	assert.Equal(t, 0, r.app.group.Len())
}

func TestRunResize(t *testing.T) {
	r := startApp(t, testConfig(t))

	r.nb.Resize(testWidth, testHeight+2)
	require.Eventually(t, func() bool {
		return strings.HasPrefix(r.nb.Line(testHeight+1), "_0:")
	}, waitFor, tick, "status bar not moved to the new last row")
}

func TestRunAlreadyRunning(t *testing.T) {
	r := startApp(t, testConfig(t))

	err := r.app.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestApplyConfig(t *testing.T) {
	r := startApp(t, testConfig(t))
	r.cancel()
	require.NoError(t, r.wait(t))

	cfg := config.Default()
	cfg.Display.FPS = 10
	cfg.Display.ScrollStep = 3
	cfg.Display.StatusBg = "blue"
	r.app.applyConfig(cfg)

	assert.Equal(t, 100*time.Millisecond, r.app.interval)
	assert.Equal(t, 3, r.app.mux.ScrollStep())
	blue, err := backend.ParseColor("blue")
	require.NoError(t, err)
	assert.Equal(t, blue, r.app.statusBg)
	assert.Equal(t, uint64(1), r.app.Metrics().Snapshot().ConfigReloads)
}
