package executor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command exceeds its wall-clock budget.
var ErrTimeout = errors.New("command timeout")

// CommandError is returned when a command cannot be started.
type CommandError struct {
	Cmd   string
	Stage string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed at %s: %v", e.Cmd, e.Stage, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }
