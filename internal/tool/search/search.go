// Package search implements the find_files tool: recursive fuzzy file name
// matching over the sandbox roots.
package search

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cyclone1070/merlin/internal/config"
	"github.com/Cyclone1070/merlin/internal/tool/gitutil"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// pathResolver validates paths against the directory sandbox and exposes the
// configured roots for whole-sandbox searches.
type pathResolver interface {
	Resolve(path string) (string, error)
	Roots() map[string]string
}

// ignoreMatcher filters walk entries by gitignore rules.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}

// Tool performs fuzzy file searches inside the sandbox.
type Tool struct {
	sandbox    pathResolver
	config     *config.Config
	matcherFor func(root string) ignoreMatcher
}

// New creates a search Tool with injected dependencies.
func New(sb pathResolver, cfg *config.Config) *Tool {
	if sb == nil {
		panic("sandbox is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Tool{
		sandbox:    sb,
		config:     cfg,
		matcherFor: defaultMatcherFor,
	}
}

// defaultMatcherFor loads the root's .gitignore, falling back to a matcher
// that never ignores when loading fails.
func defaultMatcherFor(root string) ignoreMatcher {
	m, err := gitutil.NewIgnoreMatcher(root)
	if err != nil {
		return &gitutil.NoOpMatcher{}
	}
	return m
}

// Run scores every file under the search roots against the query and returns
// the top matches. The scoring target is the base name, case-insensitive,
// on the same 0-100 partial-ratio scale the threshold is expressed in.
// Results below the configured threshold are dropped; survivors are ordered
// by score descending with ties broken by ascending path, capped at top_k
// (default from config). Finding nothing is a valid empty response.
func (t *Tool) Run(ctx context.Context, req Request) (Response, error) {
	roots, err := t.searchRoots(req.Root)
	if err != nil {
		return Response{}, err
	}

	limit := t.config.DefaultSearchResults
	if req.TopK > 0 {
		limit = req.TopK
	}
	threshold := t.config.FuzzySearchThreshold
	query := strings.ToLower(req.Query)

	seen := make(map[string]struct{})
	var matches []Match
	for _, root := range roots {
		if err := t.walkRoot(ctx, root, query, threshold, seen, &matches); err != nil {
			return Response{}, err
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Path < matches[j].Path
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return Response{Matches: matches}, nil
}

// searchRoots resolves the requested root through the sandbox, or returns
// every sandbox root (path-sorted, duplicates removed) when none was given.
func (t *Tool) searchRoots(requested string) ([]string, error) {
	if requested != "" {
		resolved, err := t.sandbox.Resolve(requested)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, &NotDirectoryError{Path: resolved}
		}
		return []string{resolved}, nil
	}

	unique := make(map[string]struct{})
	var roots []string
	for _, root := range t.sandbox.Roots() {
		if _, ok := unique[root]; ok {
			continue
		}
		unique[root] = struct{}{}
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots, nil
}

func (t *Tool) walkRoot(ctx context.Context, root, query string, threshold int, seen map[string]struct{}, matches *[]Match) error {
	matcher := t.matcherFor(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" || matcher.ShouldIgnore(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.ShouldIgnore(rel, false) {
			return nil
		}

		if _, dup := seen[path]; dup {
			return nil
		}

		score := fuzzy.PartialRatio(query, strings.ToLower(d.Name()))
		if score < threshold {
			return nil
		}

		seen[path] = struct{}{}
		*matches = append(*matches, Match{Path: path, Score: score})
		return nil
	})
}
