package terminal

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// startPTY starts cmd as a session leader with a new PTY of the given size
// as its controlling terminal and returns the master side.
func startPTY(cmd *exec.Cmd, width, height int) (*os.File, error) {
	cmd.SysProcAttr = &syscall.SysProcAttr{}
	setDeathSignal(cmd.SysProcAttr)
	return pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(width), Rows: uint16(height)})
}

// signalGroup delivers sig to the process group led by pid, falling back to
// pid alone when the group is gone. A process that has already exited is
// not an error.
func signalGroup(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return nil
	}
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		err = unix.Kill(pid, sig)
	}
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
