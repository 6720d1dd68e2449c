package agent

import (
	"errors"
	"fmt"
)

// ErrLoopBound marks a turn that exhausted its tool-dispatch cycle budget.
var ErrLoopBound = errors.New("tool-dispatch cycle limit exceeded")

// LoopBoundError is returned when the model keeps requesting tools without
// ever producing a final answer. The turn ends with this diagnostic instead
// of looping forever.
type LoopBoundError struct {
	Cycles int
}

func (e *LoopBoundError) Error() string {
	return fmt.Sprintf("no final answer after %d tool-dispatch cycles", e.Cycles)
}
func (e *LoopBoundError) Unwrap() error { return ErrLoopBound }
