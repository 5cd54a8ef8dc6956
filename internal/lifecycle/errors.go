package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons an operation on a named extension was refused. They are wrapped in
// an *ExtensionError that carries the name.
var (
	ErrUnknown          = errors.New("unknown")
	ErrNotInstalled     = errors.New("does not exist")
	ErrAlreadyInstalled = errors.New("already installed")
	ErrNoRepository     = errors.New("has no git repository configured")
	ErrNoDescriptor     = errors.New("has no compose descriptor")
)

// ExtensionError is a refused operation on a named extension. Its message
// reads "extension <name> <reason>".
type ExtensionError struct {
	Name   string
	Err    error
	Detail string // optional, e.g. the missing file name
}

func (e *ExtensionError) Error() string {
	msg := "extension " + e.Name + " " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ExtensionError) Unwrap() error { return e.Err }

func refuse(name string, reason error) error {
	return &ExtensionError{Name: name, Err: reason}
}

// CommandError is an external command that exited non-zero.
type CommandError struct {
	Extension string
	Action    string // e.g. "start containers"
	ExitCode  int
	Output    string
}

// Summary is the one-line description without the captured output.
func (e *CommandError) Summary() string {
	return fmt.Sprintf("failed to %s for extension %s (exit status %d)", e.Action, e.Extension, e.ExitCode)
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return e.Summary()
	}
	return e.Summary() + "\n" + out
}

// Brief returns a one-line description of err suitable for per-extension
// report lines.
func Brief(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Summary()
	}
	return err.Error()
}
