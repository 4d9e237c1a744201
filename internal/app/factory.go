package app

import (
	"github.com/dshills/stormux/internal/integration/process"
	"github.com/dshills/stormux/internal/integration/terminal"
	"github.com/dshills/stormux/internal/mux"
)

// groupFactory adapts a terminal.Group to mux.Factory.
type groupFactory struct {
	group   *terminal.Group
	metrics *Metrics
}

func (f groupFactory) New(width, height int) (mux.Session, error) {
	s, err := f.group.New(width, height)
	if err != nil {
		return nil, &SessionError{Op: "start", Err: err}
	}
	f.metrics.RecordSessionStart()
	return &trackedSession{Session: s}, nil
}

func (f groupFactory) CloseAll() {
	f.group.CloseAll()
}

// trackedSession names the session in write failures.
type trackedSession struct {
	*terminal.Session
}

func (s *trackedSession) Write(b []byte) error {
	if err := s.Session.Write(b); err != nil {
		return &SessionError{Op: "write", ID: s.ID(), Err: err}
	}
	return nil
}

// countingResolver records each process snapshot taken for the titles.
type countingResolver struct {
	process.TitleResolver
	metrics *Metrics
}

func (r countingResolver) Refresh() error {
	r.metrics.RecordTitleRefresh()
	return r.TitleResolver.Refresh()
}
