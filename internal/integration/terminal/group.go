package terminal

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"
)

// GroupConfig holds the settings shared by every session of a Group.
type GroupConfig struct {
	Shell        string
	Args         []string
	Env          []string
	Dir          string
	HistoryLines int
	KillGrace    time.Duration
	InputQueue   int
	Clock        clock.Clock

	// OnExit is called from a session's waiter goroutine after it exits.
	OnExit func(s *Session, err error)
}

// Group creates sessions and tears them down together.
type Group struct {
	cfg GroupConfig

	mu       sync.Mutex
	sessions map[string]*Session
	order    []string
	closed   bool
}

// NewGroup creates an empty group.
func NewGroup(cfg GroupConfig) *Group {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Group{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// New starts a session of the given size.
func (g *Group) New(width, height int) (*Session, error) {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return nil, ErrGroupClosed
	}

	s, err := startSession(SessionConfig{
		Shell:        g.cfg.Shell,
		Args:         g.cfg.Args,
		Env:          g.cfg.Env,
		Dir:          g.cfg.Dir,
		Width:        width,
		Height:       height,
		HistoryLines: g.cfg.HistoryLines,
		KillGrace:    g.cfg.KillGrace,
		InputQueue:   g.cfg.InputQueue,
		Clock:        g.cfg.Clock,
	}, g.remove)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// The shell may already have exited and been removed.
	if s.alive.Load() {
		g.sessions[s.id] = s
		g.order = append(g.order, s.id)
	}
	if g.closed {
		s.Terminate()
	}
	return s, nil
}

func (g *Group) remove(s *Session) {
	g.mu.Lock()
	if _, ok := g.sessions[s.id]; ok {
		delete(g.sessions, s.id)
		for i, id := range g.order {
			if id == s.id {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
	}
	g.mu.Unlock()

	if g.cfg.OnExit != nil {
		g.cfg.OnExit(s, s.exitErr)
	}
}

// Sessions returns the running sessions in creation order.
func (g *Group) Sessions() []*Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Session, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.sessions[id])
	}
	return out
}

// Len returns the number of running sessions.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// CloseAll asks every session to terminate and returns without waiting.
func (g *Group) CloseAll() {
	for _, s := range g.Sessions() {
		s.Terminate()
	}
}

// Shutdown terminates every session and waits for them to exit. When ctx
// ends first the remaining sessions are killed and ctx's error returned.
// No sessions can be created afterwards.
func (g *Group) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	sessions := g.Sessions()
	for _, s := range sessions {
		s.Terminate()
	}
	var eg errgroup.Group
	for _, s := range sessions {
		eg.Go(func() error { return s.Wait(ctx) })
	}
	if err := eg.Wait(); err != nil {
		for _, s := range sessions {
			s.Kill()
		}
		return err
	}
	return nil
}
