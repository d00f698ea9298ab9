package fileutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
)

// Matcher decides whether a traversal entry is excluded.
type Matcher struct {
	root    string
	matcher gitignore.IgnoreMatcher
	count   int
}

// NewMatcher builds a Matcher for the directory root from patterns and,
// when useGitignore is set, the root's .gitignore file.
// It returns nil (match nothing) when there are no patterns at all.
func NewMatcher(root string, patterns []string, useGitignore bool) (*Matcher, error) {
	var buf bytes.Buffer
	count := 0
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		buf.WriteString(p)
		buf.WriteByte('\n')
		count++
	}

	if useGitignore {
		data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
		switch {
		case err == nil:
			buf.Write(data)
			buf.WriteByte('\n')
			count += countPatterns(data)
		case os.IsNotExist(err):
			// no .gitignore is fine
		default:
			return nil, fmt.Errorf("failed to read .gitignore in %s: %w", root, err)
		}
	}

	if count == 0 {
		return nil, nil
	}

	return &Matcher{
		root:    root,
		matcher: gitignore.NewGitIgnoreFromReader(root, &buf),
		count:   count,
	}, nil
}

// Match reports whether path, a descendant of the matcher's root, is excluded.
// A nil Matcher excludes nothing.
func (m *Matcher) Match(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	return m.matcher.Match(path, isDir)
}

// Root returns the directory the patterns are relative to.
func (m *Matcher) Root() string {
	if m == nil {
		return ""
	}
	return m.root
}

// PatternCount returns the number of non-comment patterns loaded.
func (m *Matcher) PatternCount() int {
	if m == nil {
		return 0
	}
	return m.count
}

// countPatterns counts the lines of a .gitignore that carry a pattern
func countPatterns(data []byte) int {
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
	}
	return n
}
