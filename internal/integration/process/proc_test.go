package process

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProc builds a process directory under a temp dir.
type fakeProc struct {
	t    *testing.T
	root string
}

func newFakeProc(t *testing.T) *fakeProc {
	t.Helper()
	return &fakeProc{t: t, root: t.TempDir()}
}

func (f *fakeProc) dir(pid int) string {
	f.t.Helper()
	dir := filepath.Join(f.root, strconv.Itoa(pid))
	require.NoError(f.t, os.MkdirAll(dir, 0o755))
	return dir
}

// stat writes a stat record "pid (comm) S ppid ...".
func (f *fakeProc) stat(pid int, comm, ppid string) *fakeProc {
	f.t.Helper()
	record := strconv.Itoa(pid) + " (" + comm + ") S " + ppid + " " + strconv.Itoa(pid) + " 0 0 -1 4194304\n"
	f.raw(pid, record)
	return f
}

func (f *fakeProc) raw(pid int, record string) *fakeProc {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(filepath.Join(f.dir(pid), "stat"), []byte(record), 0o644))
	return f
}

func (f *fakeProc) cwd(pid int, target string) *fakeProc {
	f.t.Helper()
	require.NoError(f.t, os.Symlink(target, filepath.Join(f.dir(pid), "cwd")))
	return f
}

func (f *fakeProc) cmdline(pid int, args ...string) *fakeProc {
	f.t.Helper()
	var data []byte
	for _, a := range args {
		data = append(data, a...)
		data = append(data, 0)
	}
	require.NoError(f.t, os.WriteFile(filepath.Join(f.dir(pid), "cmdline"), data, 0o644))
	return f
}

func (f *fakeProc) tree() *Tree {
	f.t.Helper()
	tree := NewTree(WithRoot(f.root))
	require.NoError(f.t, tree.Update())
	return tree
}
