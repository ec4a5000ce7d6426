package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MATLAB source extension. Anything else is rejected outright.
const matlabExt = ".m"

// Selector picks candidate MATLAB files directly inside one directory.
// It is deliberately non-recursive: MATLAB package layout is handled by
// pointing the tool at each package directory.
type Selector struct {
	includeTests bool
	skipPatterns []string
	skipNames    map[string]bool
}

// DefaultSkipNames are well-known non-function files shipped alongside
// MATLAB packages: tables of contents, compiled helpers, checksum stubs.
var DefaultSkipNames = []string{"Contents", "parsemr", "compile_mex", "md5"}

// DefaultSkipPatterns cover demo and example files.
var DefaultSkipPatterns = []string{"demo", "Example"}

// NewSelector creates a selector. extraSkipPatterns extends (never replaces)
// the defaults.
func NewSelector(includeTests bool, extraSkipPatterns []string) *Selector {
	names := make(map[string]bool, len(DefaultSkipNames))
	for _, n := range DefaultSkipNames {
		names[n] = true
	}
	patterns := append([]string{}, DefaultSkipPatterns...)
	patterns = append(patterns, extraSkipPatterns...)
	return &Selector{
		includeTests: includeTests,
		skipPatterns: patterns,
		skipNames:    names,
	}
}

// Select returns the ordered candidate files in dir. An unreadable
// directory is fatal; everything below that is per-file filtering.
func (s *Selector) Select(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !s.keep(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if !s.looksLikeFunctionFile(path) {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// keep applies the filename rules in order: extension, test prefix,
// skip names, skip patterns.
func (s *Selector) keep(name string) bool {
	if filepath.Ext(name) != matlabExt {
		return false
	}
	stem := strings.TrimSuffix(name, matlabExt)

	if !s.includeTests && strings.HasPrefix(strings.ToLower(stem), "test") {
		return false
	}
	if s.skipNames[stem] {
		return false
	}
	for _, pattern := range s.skipPatterns {
		if s.matchesPattern(stem, pattern) {
			return false
		}
	}
	return true
}

// matchesPattern treats a skip pattern as a glob when it parses as one and
// falls back to substring matching, so both "demo*" and "demo" behave.
func (s *Selector) matchesPattern(stem, pattern string) bool {
	if matched, err := doublestar.Match(pattern, stem); err == nil && matched {
		return true
	}
	return strings.Contains(stem, pattern)
}

// looksLikeFunctionFile is the fast pre-scan that rejects script and pure
// data files: anything with no function or classdef declaration at the
// start of a line. It reads at most the whole file once and never parses.
func (s *Selector) looksLikeFunctionFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		// Leave unreadable files in; the pipeline reports the read error
		// as a per-file diagnostic instead of silently dropping the path.
		return true
	}
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "function") || strings.HasPrefix(trimmed, "classdef") {
			rest := trimmed[len("function"):]
			if strings.HasPrefix(trimmed, "classdef") {
				rest = trimmed[len("classdef"):]
			}
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				return true
			}
		}
	}
	return false
}

// Reader reads files from the local filesystem.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (Reader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
