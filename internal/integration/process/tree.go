package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// DefaultRoot is the process directory read by a Tree.
const DefaultRoot = "/proc"

// ErrNoSnapshot is returned by Snapshot before the first successful Update.
var ErrNoSnapshot = errors.New("process: no snapshot taken")

// Node is one process in a snapshot.
type Node struct {
	PID  int
	PPID int
	Comm string
}

// Snapshot is an immutable view of the process table.
type Snapshot struct {
	nodes    []Node
	index    map[int]int
	children map[int][]int
}

func newSnapshot(capacity int) *Snapshot {
	return &Snapshot{
		nodes:    make([]Node, 0, capacity),
		index:    make(map[int]int, capacity),
		children: make(map[int][]int),
	}
}

func (s *Snapshot) add(n Node) {
	s.index[n.PID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	s.children[n.PPID] = append(s.children[n.PPID], n.PID)
}

// Len returns the number of processes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Node returns the node for pid.
func (s *Snapshot) Node(pid int) (Node, bool) {
	i, ok := s.index[pid]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Children returns the direct children of pid in directory order.
func (s *Snapshot) Children(pid int) []int {
	return append([]int(nil), s.children[pid]...)
}

// AllChildren returns every descendant of pid, breadth first. A pid is
// listed at most once and pid itself is never listed.
func (s *Snapshot) AllChildren(pid int) []int {
	seen := map[int]bool{pid: true}
	var out []int
	queue := []int{pid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range s.children[cur] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// Option configures a Tree.
type Option func(*Tree)

// WithRoot sets the process directory. Tests point it at a fake tree.
func WithRoot(root string) Option {
	return func(t *Tree) {
		t.root = root
	}
}

// Tree is a snapshot service over the process directory.
//
// Update replaces the snapshot wholesale; all query methods read the most
// recently published one. Tree is safe for concurrent use.
type Tree struct {
	root string
	snap atomic.Pointer[Snapshot]
}

// NewTree creates a tree with an empty snapshot. Call Update to fill it.
func NewTree(opts ...Option) *Tree {
	t := &Tree{root: DefaultRoot}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update takes a full snapshot of the process directory. Processes that
// cannot be read are skipped. The previous snapshot is kept when the
// directory itself cannot be listed.
func (t *Tree) Update() error {
	entries, err := os.ReadDir(t.root)
	if err != nil {
		return fmt.Errorf("process: list %s: %w", t.root, err)
	}

	snap := newSnapshot(len(entries))
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		fields := t.Stat(pid)
		if len(fields) <= statPPID {
			continue
		}
		snap.add(Node{
			PID:  pid,
			PPID: parentID(fields[statPPID]),
			Comm: fields[statComm],
		})
	}

	t.snap.Store(snap)
	return nil
}

// Snapshot returns the current snapshot.
func (t *Tree) Snapshot() (*Snapshot, error) {
	s := t.snap.Load()
	if s == nil {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

func (t *Tree) current() *Snapshot {
	if s := t.snap.Load(); s != nil {
		return s
	}
	return newSnapshot(0)
}

// Contains reports whether pid was present in the last snapshot.
func (t *Tree) Contains(pid int) bool {
	_, ok := t.current().index[pid]
	return ok
}

// Parent returns the parent id recorded for pid.
func (t *Tree) Parent(pid int) (int, bool) {
	n, ok := t.current().Node(pid)
	return n.PPID, ok
}

// Command returns the command name recorded for pid.
func (t *Tree) Command(pid int) (string, bool) {
	n, ok := t.current().Node(pid)
	return n.Comm, ok
}

// Children returns the direct children of pid.
func (t *Tree) Children(pid int) []int {
	return t.current().Children(pid)
}

// AllChildren returns every descendant of pid, breadth first.
func (t *Tree) AllChildren(pid int) []int {
	return t.current().AllChildren(pid)
}

// Cwd returns the working directory of pid, or "" if it cannot be read.
func (t *Tree) Cwd(pid int) string {
	path, err := os.Readlink(t.path(pid, "cwd"))
	if err != nil {
		return ""
	}
	return path
}

// Cmdline returns the command line of pid with arguments separated by
// spaces, or "" if it cannot be read.
func (t *Tree) Cmdline(pid int) string {
	data, err := os.ReadFile(t.path(pid, "cmdline"))
	if err != nil {
		return ""
	}
	data = []byte(strings.TrimRight(string(data), "\x00"))
	for i, b := range data {
		if b == 0 {
			data[i] = ' '
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}

// Stat returns the stat fields of pid, or nil if they cannot be read.
// Field 1 is the command name without parentheses.
func (t *Tree) Stat(pid int) []string {
	data, err := os.ReadFile(t.path(pid, "stat"))
	if err != nil {
		return nil
	}
	fields := parseStat(string(data))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Dump writes pid and its descendants as an indented listing.
func (t *Tree) Dump(w io.Writer, pid int) error {
	snap := t.current()
	seen := make(map[int]bool)
	var walk func(pid, depth int) error
	walk = func(pid, depth int) error {
		if seen[pid] {
			return nil
		}
		seen[pid] = true
		node, _ := snap.Node(pid)
		if _, err := fmt.Fprintf(w, "%s%d %s\n", strings.Repeat("  ", depth), pid, node.Comm); err != nil {
			return err
		}
		for _, child := range snap.children[pid] {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(pid, 0)
}

func (t *Tree) path(pid int, name string) string {
	return filepath.Join(t.root, strconv.Itoa(pid), name)
}
