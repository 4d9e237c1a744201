package terminal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	// DefaultKillGrace is how long Terminate waits after SIGHUP before
	// sending SIGKILL.
	DefaultKillGrace = 2 * time.Second

	// DefaultInputQueue is the number of pending writes a session buffers.
	DefaultInputQueue = 256

	readBufferSize = 32 * 1024
)

// SessionConfig configures one shell session.
type SessionConfig struct {
	Shell        string
	Args         []string
	Env          []string
	Dir          string
	Width        int
	Height       int
	HistoryLines int
	KillGrace    time.Duration
	InputQueue   int
	Clock        clock.Clock
}

func (c *SessionConfig) setDefaults() {
	if c.Shell == "" {
		c.Shell = DefaultShell()
	}
	if c.KillGrace <= 0 {
		c.KillGrace = DefaultKillGrace
	}
	if c.InputQueue <= 0 {
		c.InputQueue = DefaultInputQueue
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
}

// DefaultShell returns $SHELL, or /bin/sh when it is unset.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Session is one shell running on a PTY.
type Session struct {
	id     string
	cmd    *exec.Cmd
	pty    *os.File
	screen *Screen
	parser *Parser
	clock  clock.Clock
	grace  time.Duration

	input  chan []byte
	exited chan struct{}
	done   chan struct{}

	alive   atomic.Bool
	closing atomic.Bool
	exitErr error

	onExit func(*Session)
}

// NewSession starts a shell of the configured size.
func NewSession(cfg SessionConfig) (*Session, error) {
	return startSession(cfg, nil)
}

// startSession starts a shell and calls onExit from the waiter goroutine
// after it exits, before Done is closed.
func startSession(cfg SessionConfig, onExit func(*Session)) (*Session, error) {
	cfg.setDefaults()
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}
	shell, err := exec.LookPath(cfg.Shell)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrShellNotFound, cfg.Shell)
	}

	cmd := exec.Command(shell, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, cfg.Env...)

	ptmx, err := startPTY(cmd, cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", shell, err)
	}

	screen := NewScreen(cfg.Width, cfg.Height, NewHistory(cfg.HistoryLines))
	s := &Session{
		id:     uuid.NewString(),
		cmd:    cmd,
		pty:    ptmx,
		screen: screen,
		parser: NewParser(screen),
		clock:  cfg.Clock,
		grace:  cfg.KillGrace,
		input:  make(chan []byte, cfg.InputQueue),
		exited: make(chan struct{}),
		done:   make(chan struct{}),
		onExit: onExit,
	}
	s.alive.Store(true)

	readDone := make(chan struct{})
	go s.readLoop(readDone)
	go s.writeLoop()
	go s.waitLoop(readDone)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// PID returns the shell's process id.
func (s *Session) PID() int {
	return s.cmd.Process.Pid
}

// IsAlive reports whether the shell is running and has not been asked to
// terminate. A session stops being alive as soon as Terminate is called,
// even while the shell is still inside its grace period.
func (s *Session) IsAlive() bool {
	return s.alive.Load() && !s.closing.Load()
}

// Title returns the title the shell last set.
func (s *Session) Title() string {
	return s.screen.Title()
}

// Keepalive resumes the shell's process group if it was stopped.
func (s *Session) Keepalive() error {
	if !s.IsAlive() {
		return ErrSessionClosed
	}
	return signalGroup(s.PID(), unix.SIGCONT)
}

// Write queues b for the shell. It never blocks on the PTY.
func (s *Session) Write(b []byte) error {
	if !s.IsAlive() {
		return ErrSessionClosed
	}
	buf := append([]byte(nil), b...)
	select {
	case s.input <- buf:
		return nil
	case <-s.exited:
		return ErrSessionClosed
	default:
		return ErrInputOverflow
	}
}

// Dump returns the live screen with its cursor.
func (s *Session) Dump() Frame {
	return s.screen.Snapshot()
}

// DumpHistory returns the view offset rows back into history.
func (s *Session) DumpHistory(offset int) Frame {
	return s.screen.HistoryFrame(offset)
}

// Terminate hangs up the shell's process group and kills it if it is still
// running after the grace period. It returns immediately.
func (s *Session) Terminate() {
	if s.closing.Swap(true) || !s.alive.Load() {
		return
	}
	_ = signalGroup(s.PID(), unix.SIGHUP)
	go func() {
		select {
		case <-s.exited:
		case <-s.clock.After(s.grace):
			_ = signalGroup(s.PID(), unix.SIGKILL)
		}
	}()
}

// Kill sends SIGKILL to the shell's process group.
func (s *Session) Kill() {
	if s.alive.Load() {
		_ = signalGroup(s.PID(), unix.SIGKILL)
	}
}

// Done is closed once the shell has exited and its goroutines have
// finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is done or ctx is cancelled.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the shell's exit error after Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.exitErr
	default:
		return nil
	}
}

func (s *Session) readLoop(readDone chan<- struct{}) {
	defer close(readDone)
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.parser.Parse(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) writeLoop() {
	for {
		select {
		case b := <-s.input:
			// Write errors surface as the shell exiting.
			_, _ = s.pty.Write(b)
		case <-s.exited:
			return
		}
	}
}

// waitLoop reaps the shell. Background jobs may keep the PTY slave open,
// so the master is closed to release the reader.
func (s *Session) waitLoop(readDone <-chan struct{}) {
	s.exitErr = s.cmd.Wait()
	s.alive.Store(false)
	close(s.exited)
	_ = s.pty.Close()
	<-readDone
	if s.onExit != nil {
		s.onExit(s)
	}
	close(s.done)
}
