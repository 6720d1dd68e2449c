package search

import (
	"fmt"
)

// QueryRequiredError is returned when the query is empty.
type QueryRequiredError struct{}

func (e *QueryRequiredError) Error() string {
	return "query is required and must not be empty"
}

// NegativeTopKError is returned when top_k is negative.
type NegativeTopKError struct {
	Value int
}

func (e *NegativeTopKError) Error() string {
	return fmt.Sprintf("top_k must be >= 0, got %d", e.Value)
}

// NotDirectoryError is returned when the search root is not a directory.
type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return fmt.Sprintf("search root is not a directory: %s", e.Path)
}
