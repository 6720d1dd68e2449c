package adapter

import (
	"errors"
	"fmt"
)

// UnknownToolError is returned when a tool call names a tool that was never
// registered. Unknown identifiers are a data-validation error from the model,
// not a dispatch-time crash.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}
func (e *UnknownToolError) Unwrap() error { return ErrUnknownTool }

// InvalidArgumentsError is returned when tool call arguments fail decoding or
// validation against the tool's declared schema.
type InvalidArgumentsError struct {
	Tool  string
	Cause error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %v", e.Tool, e.Cause)
}
func (e *InvalidArgumentsError) Unwrap() error { return ErrInvalidArguments }

// DuplicateToolError is returned when two tools register under the same name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q registered twice", e.Name)
}

// -- Sentinels --

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
)
