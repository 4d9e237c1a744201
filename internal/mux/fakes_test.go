package mux

import (
	"fmt"

	"github.com/dshills/stormux/internal/integration/terminal"
)

type fakeSession struct {
	id     string
	pid    int
	width  int
	height int
	alive  bool

	writes       [][]byte
	keepalives   int
	terminated   bool
	historyCalls map[int]int
	dumps        int
}

func (s *fakeSession) ID() string       { return s.id }
func (s *fakeSession) PID() int         { return s.pid }
func (s *fakeSession) IsAlive() bool    { return s.alive }
func (s *fakeSession) Keepalive() error { s.keepalives++; return nil }
func (s *fakeSession) Terminate()       { s.terminated = true }

func (s *fakeSession) Write(b []byte) error {
	s.writes = append(s.writes, append([]byte(nil), b...))
	return nil
}

func (s *fakeSession) Dump() terminal.Frame {
	s.dumps++
	return terminal.Frame{Cursor: &terminal.Position{}, Rows: [][]terminal.Cell{{{Rune: 'L', Width: 1}}}}
}

func (s *fakeSession) DumpHistory(offset int) terminal.Frame {
	s.historyCalls[offset]++
	return terminal.Frame{Rows: [][]terminal.Cell{{{Rune: rune('0' + offset%10), Width: 1}}}}
}

func (s *fakeSession) written() string {
	var out []byte
	for _, w := range s.writes {
		out = append(out, w...)
	}
	return string(out)
}

type fakeFactory struct {
	created  []*fakeSession
	err      error
	closeAll int
}

func (f *fakeFactory) New(width, height int) (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := len(f.created)
	s := &fakeSession{
		id:           fmt.Sprintf("s%d", n),
		pid:          100 + n,
		width:        width,
		height:       height,
		alive:        true,
		historyCalls: make(map[int]int),
	}
	f.created = append(f.created, s)
	return s, nil
}

// CloseAll marks every session terminated; they report dead from then on.
func (f *fakeFactory) CloseAll() {
	f.closeAll++
	for _, s := range f.created {
		s.terminated = true
		s.alive = false
	}
}

type fakePrompter struct {
	text   string
	ok     bool
	labels []string
}

func (p *fakePrompter) Prompt(label string) (string, bool) {
	p.labels = append(p.labels, label)
	return p.text, p.ok
}

type fakeResolver struct {
	refreshes int
	err       error
}

func (r *fakeResolver) Refresh() error {
	r.refreshes++
	return r.err
}

func (r *fakeResolver) Resolve(pid int, focused bool) string {
	if focused {
		return fmt.Sprintf("sh %d", pid)
	}
	return "sh"
}
