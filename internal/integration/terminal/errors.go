package terminal

import "errors"

// Sentinel errors for the terminal package.
var (
	// ErrSessionClosed is returned when writing to a session that has exited.
	ErrSessionClosed = errors.New("terminal: session closed")

	// ErrInputOverflow is returned when a session's input queue is full.
	ErrInputOverflow = errors.New("terminal: input queue full")

	// ErrInvalidSize is returned when a session size is not positive.
	ErrInvalidSize = errors.New("terminal: invalid size")

	// ErrShellNotFound is returned when the shell executable is not found.
	ErrShellNotFound = errors.New("terminal: shell not found")

	// ErrGroupClosed is returned by New after Shutdown.
	ErrGroupClosed = errors.New("terminal: group shut down")
)
