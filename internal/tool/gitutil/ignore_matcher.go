// Package gitutil provides gitignore pattern matching for filesystem walks.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// GitignoreReadError is returned when .gitignore cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }

// IgnoreMatcher implements gitignore pattern matching using go-git's matcher.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from the given root. If the file doesn't
// exist the matcher never ignores (no error).
func NewIgnoreMatcher(root string) (*IgnoreMatcher, error) {
	gitignorePath := filepath.Join(root, ".gitignore")

	data, err := os.ReadFile(gitignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &IgnoreMatcher{matcher: nil}, nil
		}
		return nil, &GitignoreReadError{Path: gitignorePath, Cause: err}
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if pattern := gitignore.ParsePattern(line, nil); pattern != nil {
			patterns = append(patterns, pattern)
		}
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore checks if a relative path matches any gitignore patterns.
// Returns false if no .gitignore was loaded.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(relativePath), isDir)
}

// splitPath splits a path into segments for gitignore matching.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

// NoOpMatcher is a gitignore matcher that never ignores any files. It is used
// when gitignore loading fails and the walk should proceed unfiltered.
type NoOpMatcher struct{}

// ShouldIgnore always returns false for NoOpMatcher.
func (m *NoOpMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	return false
}
