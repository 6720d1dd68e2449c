package sandbox

import (
	"errors"
	"fmt"
	"strings"
)

// RootError is returned when a configured sandbox root is invalid.
type RootError struct {
	Name  string
	Path  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid sandbox root %q (%s): %v", e.Name, e.Path, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// ViolationError is returned when a path resolves outside every sandbox root.
// It carries the rejected path and the full allowed root set for diagnostics.
type ViolationError struct {
	Path  string
	Roots []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("path %q is outside the sandbox (allowed roots: %s)",
		e.Path, strings.Join(e.Roots, ", "))
}
func (e *ViolationError) Unwrap() error { return ErrOutsideRoots }

// -- Sentinels --

var (
	ErrOutsideRoots  = errors.New("path is outside sandbox roots")
	ErrNotADirectory = errors.New("not a directory")
)
