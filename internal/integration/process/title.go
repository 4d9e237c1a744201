package process

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FallbackTitle is the label used when a title cannot be resolved.
const FallbackTitle = "?"

// TitleResolver produces session labels from shell pids.
type TitleResolver interface {
	// Refresh takes a new process snapshot. It is called once per title
	// recompute, not once per session.
	Refresh() error

	// Resolve returns the label for the session whose shell is pid.
	Resolve(pid int, focused bool) string
}

// Source is the process information a Resolver needs. *Tree implements it.
type Source interface {
	Update() error
	Contains(pid int) bool
	AllChildren(pid int) []int
	Parent(pid int) (int, bool)
	Cwd(pid int) string
	Cmdline(pid int) string
}

// Resolver derives titles from the deepest descendant of a shell.
type Resolver struct {
	src Source
}

// NewResolver creates a resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Refresh updates the underlying snapshot.
func (r *Resolver) Refresh() error {
	return r.src.Update()
}

// Resolve picks the last descendant of pid (or pid itself when it has
// none), walks back toward pid for the first readable working directory and
// formats "<base(cwd)>: <cmd> <candidate>" for the focused session or just
// "<cmd>" otherwise. cmd is the first word of the candidate's command line.
func (r *Resolver) Resolve(pid int, focused bool) string {
	if pid <= 0 || !r.src.Contains(pid) {
		return FallbackTitle
	}

	candidate := pid
	descendants := r.src.AllChildren(pid)
	if n := len(descendants); n > 0 {
		candidate = descendants[n-1]
	}

	cwd := r.cwdToward(candidate, pid, len(descendants)+1)
	fields := strings.Fields(r.src.Cmdline(candidate))
	if cwd == "" || len(fields) == 0 {
		return FallbackTitle
	}

	if !focused {
		return fields[0]
	}
	return fmt.Sprintf("%s: %s %d", filepath.Base(cwd), fields[0], candidate)
}

// cwdToward walks from pid up the parent chain, stopping at stop, and
// returns the first non-empty working directory.
func (r *Resolver) cwdToward(pid, stop, limit int) string {
	cur := pid
	for range limit {
		if cwd := r.src.Cwd(cur); cwd != "" {
			return cwd
		}
		if cur == stop {
			return ""
		}
		parent, ok := r.src.Parent(cur)
		if !ok || parent == cur {
			return ""
		}
		cur = parent
	}
	return ""
}
