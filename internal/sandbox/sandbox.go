// Package sandbox bounds every filesystem-touching operation to a fixed set
// of named root directories. All model-supplied paths must pass through
// Policy.Resolve before they are used; nothing else in the system may touch
// the filesystem from a model-given path.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CwdRootName is the reserved root name for the process working directory.
// It is always present and cannot be overridden by configuration.
const CwdRootName = "cwd"

// Policy holds the allow-listed root set. It is immutable after construction
// and therefore safe to share without locking.
type Policy struct {
	roots map[string]string // name -> canonical absolute path
	cwd   string            // canonical path of the cwd root
}

// NewPolicy creates a Policy from named root directories. Each root is
// canonicalised (absolute, symlinks resolved) and must exist as a directory.
// The process working directory is added under CwdRootName.
func NewPolicy(cwd string, roots map[string]string) (*Policy, error) {
	canonical := make(map[string]string, len(roots)+1)

	for name, root := range roots {
		if name == CwdRootName {
			continue
		}
		resolved, err := CanonicaliseRoot(root)
		if err != nil {
			return nil, &RootError{Name: name, Path: root, Cause: err}
		}
		canonical[name] = resolved
	}

	resolvedCwd, err := CanonicaliseRoot(cwd)
	if err != nil {
		return nil, &RootError{Name: CwdRootName, Path: cwd, Cause: err}
	}
	canonical[CwdRootName] = resolvedCwd

	return &Policy{roots: canonical, cwd: resolvedCwd}, nil
}

// CanonicaliseRoot canonicalises a root path by making it absolute and
// resolving symlinks. Returns an error if the path doesn't exist or isn't a
// directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, resolved)
	}
	return resolved, nil
}

// Resolve normalises a candidate path and validates it is contained in at
// least one sandbox root. Tilde is expanded, relative paths are resolved
// against the cwd root, and symlinks on the deepest existing prefix are
// followed so a link cannot smuggle an operation outside the roots.
// Returns the canonical absolute path or a *ViolationError.
func (p *Policy) Resolve(path string) (string, error) {
	expanded, err := expandTilde(path)
	if err != nil {
		return "", err
	}

	var abs string
	if filepath.IsAbs(expanded) {
		abs = filepath.Clean(expanded)
	} else {
		abs = filepath.Clean(filepath.Join(p.cwd, expanded))
	}

	resolved, err := resolveExistingPrefix(abs)
	if err != nil {
		return "", err
	}

	for _, root := range p.roots {
		if contains(root, resolved) {
			return resolved, nil
		}
	}
	return "", &ViolationError{Path: resolved, Roots: p.rootPaths()}
}

// Contains reports whether an already-resolved absolute path lies inside the
// sandbox. Callers holding paths from Resolve do not need it; it exists for
// results produced by filesystem walks rooted at resolved paths.
func (p *Policy) Contains(resolved string) bool {
	for _, root := range p.roots {
		if contains(root, resolved) {
			return true
		}
	}
	return false
}

// Roots returns a copy of the name -> path root map.
func (p *Policy) Roots() map[string]string {
	out := make(map[string]string, len(p.roots))
	for name, root := range p.roots {
		out[name] = root
	}
	return out
}

// Cwd returns the canonical process working directory root.
func (p *Policy) Cwd() string {
	return p.cwd
}

// Describe returns a "name: path" listing of all roots, sorted by name,
// suitable for inclusion in the system prompt.
func (p *Policy) Describe() string {
	names := make([]string, 0, len(p.roots))
	for name := range p.roots {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+p.roots[name])
	}
	return strings.Join(lines, "\n")
}

func (p *Policy) rootPaths() []string {
	paths := make([]string, 0, len(p.roots))
	for _, root := range p.roots {
		paths = append(paths, root)
	}
	sort.Strings(paths)
	return paths
}

// expandTilde expands a leading ~ or ~/ to the user home directory.
func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand tilde: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// resolveExistingPrefix resolves symlinks on the deepest existing prefix of
// abs and rejoins the non-existent remainder. This lets tools reference paths
// that do not exist yet (a command's output file, a directory to create)
// while still following any symlinks on the way there.
func resolveExistingPrefix(abs string) (string, error) {
	prefix := abs
	var remainder []string
	for {
		resolved, err := filepath.EvalSymlinks(prefix)
		if err == nil {
			for i := len(remainder) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, remainder[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(prefix)
		if parent == prefix {
			// Hit the filesystem root without finding anything that exists.
			return abs, nil
		}
		remainder = append(remainder, filepath.Base(prefix))
		prefix = parent
	}
}

func contains(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
