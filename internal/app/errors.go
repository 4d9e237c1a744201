package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning is returned by Run while another Run is active.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrInitialization matches every InitError.
	ErrInitialization = errors.New("initialization failed")

	// ErrBackendClosed indicates the terminal went away while running.
	ErrBackendClosed = errors.New("terminal backend closed")

	// ErrShutdownTimeout indicates sessions outlived the shutdown deadline.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// InitError reports a component that could not be set up.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is matches ErrInitialization as well as the wrapped error.
func (e *InitError) Is(target error) bool {
	return target == ErrInitialization
}

// ComponentError tags a failure with the component and the step that hit it,
// e.g. "mux: dispatch: ...".
type ComponentError struct {
	Component string
	Action    string
	Err       error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{Component: component, Action: action, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Component
	if e.Action != "" {
		msg += ": " + e.Action
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SessionError reports a failed operation on one session. ID is empty when
// the session never came up.
type SessionError struct {
	Op  string // "start" or "write"
	ID  string
	Err error
}

func (e *SessionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("session %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("session %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// RecoveredPanicError carries a panic value out of the loop. Error includes
// the stack, so it belongs in the log file only.
type RecoveredPanicError struct {
	Value any
	Stack string
}

// NewRecoveredPanicError creates a new RecoveredPanicError.
func NewRecoveredPanicError(value any, stack string) *RecoveredPanicError {
	return &RecoveredPanicError{Value: value, Stack: stack}
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stack == "" {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}
