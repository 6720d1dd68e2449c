package command

import (
	"fmt"
)

// CommandsRequiredError is returned when the commands list is empty.
type CommandsRequiredError struct{}

func (e *CommandsRequiredError) Error() string {
	return "commands is required and must not be empty"
}

// EmptyCommandError is returned when a command in the list is an empty string.
type EmptyCommandError struct{}

func (e *EmptyCommandError) Error() string {
	return "commands must not contain empty strings"
}

// NegativeTimeoutError is returned when the requested timeout is negative.
type NegativeTimeoutError struct {
	Value int
}

func (e *NegativeTimeoutError) Error() string {
	return fmt.Sprintf("timeout_seconds must be >= 0, got %d", e.Value)
}
