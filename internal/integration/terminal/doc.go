// Package terminal runs interactive shells on pseudo-terminals and keeps a
// character grid of what they print.
//
// # Architecture
//
//   - Session: one shell on one PTY, with a reader, a writer and a waiter
//     goroutine
//   - Parser: escape sequence interpreter feeding a Screen
//   - Screen: fixed-size cell grid with scroll region, alternate buffer and
//     a History of rows scrolled off the top
//   - Group: creates sessions of a common configuration and tears them down
//
// The emulator covers what interactive shells and common full-screen
// programs use (cursor movement, erase, insert/delete, scroll regions, SGR
// colours, alternate screen, OSC titles). It is not a complete VT220.
//
// # Frames
//
// Session.Dump returns the live grid with the cursor position.
// Session.DumpHistory(offset) returns the same sized view shifted offset rows
// back into history, without a cursor.
//
//	group := terminal.NewGroup(terminal.GroupConfig{Shell: "/bin/sh"})
//	sess, err := group.New(80, 24)
//	if err != nil {
//	    return err
//	}
//	_ = sess.Write([]byte("ls\r"))
//	frame := sess.Dump()
//
// # Teardown
//
// Terminate sends SIGHUP to the shell's process group and escalates to
// SIGKILL after a grace period without blocking the caller. Group.Shutdown
// does the same for every session and waits for them to exit.
//
// # Thread Safety
//
// Session, Screen and Group are safe for concurrent use. A Parser must be
// fed from one goroutine.
package terminal
