package mux

import "github.com/dshills/stormux/internal/integration/terminal"

// Session is a running shell as the multiplexer sees it.
type Session interface {
	ID() string
	PID() int
	IsAlive() bool

	// Keepalive makes sure the backing process is running.
	Keepalive() error

	// Write hands bytes to the backing process without blocking on it.
	Write(b []byte) error

	// Dump returns the live screen with its cursor.
	Dump() terminal.Frame

	// DumpHistory returns the screen shifted offset rows into history.
	DumpHistory(offset int) terminal.Frame

	// Terminate asks the backing process to exit and returns immediately.
	Terminate()
}

// Factory creates sessions and closes them all.
type Factory interface {
	New(width, height int) (Session, error)
	CloseAll()
}

// Prompter asks the user for a line of text. It returns false when the
// prompt was cancelled.
type Prompter interface {
	Prompt(label string) (string, bool)
}

// Logger receives diagnostic messages.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
