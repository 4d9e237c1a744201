package process

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStat(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   []string
	}{
		{
			name:   "plain",
			record: "42 (bash) S 1 42 42 0\n",
			want:   []string{"42", "bash", "S", "1", "42", "42", "0"},
		},
		{
			name:   "spaces in comm",
			record: "7 (tmux: server) S 1 7",
			want:   []string{"7", "tmux: server", "S", "1", "7"},
		},
		{
			name:   "parenthesis in comm",
			record: "8 (a) b) R 3 8",
			want:   []string{"8", "a) b", "R", "3", "8"},
		},
		{
			name:   "no parentheses",
			record: "9 sh S 2",
			want:   []string{"9", "sh", "S", "2"},
		},
		{
			name:   "empty",
			record: "",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStat(tt.record)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParentIDSynthetic(t *testing.T) {
	assert.Equal(t, 17, parentID("17"))

	a := parentID("S")
	assert.Less(t, a, 0)
	assert.Equal(t, a, parentID("S"), "derivation must be deterministic")
	assert.NotEqual(t, a, parentID("R"))
}

func TestTreeUpdate(t *testing.T) {
	fp := newFakeProc(t)
	fp.stat(1, "init", "0").
		stat(10, "bash", "1").
		stat(11, "make", "10").
		stat(12, "cc", "11").
		stat(20, "odd", "S")
	require.NoError(t, os.MkdirAll(filepath.Join(fp.root, "self"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(fp.root, "99"), 0o755)) // exited, no stat

	tree := fp.tree()
	snap, err := tree.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Len())

	assert.True(t, tree.Contains(10))
	assert.False(t, tree.Contains(99))

	ppid, ok := tree.Parent(11)
	require.True(t, ok)
	assert.Equal(t, 10, ppid)

	comm, ok := tree.Command(12)
	require.True(t, ok)
	assert.Equal(t, "cc", comm)

	odd, ok := tree.Parent(20)
	require.True(t, ok)
	assert.Equal(t, syntheticID("S"), odd)
	assert.Equal(t, []int{20}, tree.Children(odd))

	assert.Equal(t, []int{10}, tree.Children(1))
}

func TestTreeUpdateRebuildsWholesale(t *testing.T) {
	fp := newFakeProc(t)
	fp.stat(10, "bash", "1").stat(11, "vim", "10")
	tree := fp.tree()
	require.Equal(t, []int{11}, tree.AllChildren(10))

	require.NoError(t, os.RemoveAll(filepath.Join(fp.root, "11")))
	fp.stat(12, "less", "10")
	require.NoError(t, tree.Update())

	assert.Equal(t, []int{12}, tree.AllChildren(10))
	assert.False(t, tree.Contains(11))
}

func TestTreeUpdateKeepsSnapshotOnListError(t *testing.T) {
	fp := newFakeProc(t)
	fp.stat(10, "bash", "1")
	tree := fp.tree()

	require.NoError(t, os.RemoveAll(fp.root))
	assert.Error(t, tree.Update())
	assert.True(t, tree.Contains(10))
}

func TestSnapshotBeforeUpdate(t *testing.T) {
	tree := NewTree(WithRoot(t.TempDir()))
	_, err := tree.Snapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.Empty(t, tree.AllChildren(1))
	assert.False(t, tree.Contains(1))
}

func TestAllChildren(t *testing.T) {
	fp := newFakeProc(t)
	fp.stat(10, "bash", "1").
		stat(11, "a", "10").
		stat(12, "b", "10").
		stat(13, "c", "11").
		stat(14, "d", "13")
	tree := fp.tree()

	assert.Equal(t, []int{11, 12, 13, 14}, tree.AllChildren(10))
	assert.Equal(t, []int{13, 14}, tree.AllChildren(11))
	assert.Empty(t, tree.AllChildren(14))
	assert.Empty(t, tree.AllChildren(12345))
}

func TestAllChildrenTerminatesOnCycle(t *testing.T) {
	snap := newSnapshot(2)
	snap.add(Node{PID: 5, PPID: 6})
	snap.add(Node{PID: 6, PPID: 5})

	assert.Equal(t, []int{6}, snap.AllChildren(5))
}

func TestSingleProcessLookups(t *testing.T) {
	fp := newFakeProc(t)
	fp.stat(10, "bash", "1").
		cwd(10, "/home/user/src").
		cmdline(10, "/bin/bash", "--login")
	tree := fp.tree()

	assert.Equal(t, "/home/user/src", tree.Cwd(10))
	assert.Equal(t, "/bin/bash --login", tree.Cmdline(10))
	assert.Equal(t, "bash", tree.Stat(10)[statComm])

	assert.Empty(t, tree.Cwd(77))
	assert.Empty(t, tree.Cmdline(77))
	assert.Nil(t, tree.Stat(77))
}

func TestDump(t *testing.T) {
	fp := newFakeProc(t)
	fp.stat(10, "bash", "1").
		stat(11, "make", "10").
		stat(12, "cc", "11").
		stat(13, "ld", "10")
	tree := fp.tree()

	var b strings.Builder
	require.NoError(t, tree.Dump(&b, 10))
	assert.Equal(t, "10 bash\n  11 make\n    12 cc\n  13 ld\n", b.String())
}
