//go:build linux

package terminal

import "syscall"

// setDeathSignal hangs up the shell if the multiplexer dies without tearing
// it down.
func setDeathSignal(attr *syscall.SysProcAttr) {
	attr.Pdeathsig = syscall.SIGHUP
}
