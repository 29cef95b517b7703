// Package matcher decides which paths are excluded from a traversal.
package matcher

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	pathSegmentSeparator = "/"
	currentDirectoryRef  = "./"
	patternListSeparator = ","
)

// WarningFunc receives patterns that could not be parsed as globs.
type WarningFunc func(pattern string, err error)

type compiledPattern struct {
	source   string
	glob     string
	anchored bool
	literal  bool
}

// PathMatcher evaluates root-relative paths against an immutable set of
// exclusion globs. A path matches when any pattern matches the path itself or
// one of its ancestor directories. Patterns without a separator are compared
// with every path segment; patterns with a separator are anchored at the root
// and compared with every ancestor prefix.
type PathMatcher struct {
	patterns []compiledPattern
}

// NewPathMatcher compiles patterns in order. Malformed patterns fall back to
// literal comparison and are reported through warn when it is not nil.
func NewPathMatcher(patterns []string, warn WarningFunc) *PathMatcher {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		normalizedPattern, anchored := normalizePattern(pattern)
		if normalizedPattern == "" {
			continue
		}
		entry := compiledPattern{
			source:   pattern,
			glob:     normalizedPattern,
			anchored: anchored,
		}
		if !doublestar.ValidatePattern(normalizedPattern) {
			entry.literal = true
			if warn != nil {
				warn(pattern, doublestar.ErrBadPattern)
			}
		}
		compiled = append(compiled, entry)
	}
	return &PathMatcher{patterns: compiled}
}

// Patterns returns the source patterns that survived normalization.
func (pathMatcher *PathMatcher) Patterns() []string {
	if pathMatcher == nil {
		return nil
	}
	result := make([]string, 0, len(pathMatcher.patterns))
	for _, pattern := range pathMatcher.patterns {
		result = append(result, pattern.source)
	}
	return result
}

// Matches reports whether relativePath or any of its ancestors is excluded.
func (pathMatcher *PathMatcher) Matches(relativePath string) bool {
	if pathMatcher == nil || len(pathMatcher.patterns) == 0 {
		return false
	}
	normalizedPath := normalizePath(relativePath)
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}
	segments := strings.Split(normalizedPath, pathSegmentSeparator)
	prefixes := make([]string, len(segments))
	for segmentIndex := range segments {
		prefixes[segmentIndex] = strings.Join(segments[:segmentIndex+1], pathSegmentSeparator)
	}

	for _, pattern := range pathMatcher.patterns {
		candidates := segments
		if pattern.anchored {
			candidates = prefixes
		}
		for _, candidate := range candidates {
			if pattern.matches(candidate) {
				return true
			}
		}
	}
	return false
}

func (pattern compiledPattern) matches(candidate string) bool {
	if pattern.literal {
		return pattern.glob == candidate
	}
	isMatched, matchError := doublestar.Match(pattern.glob, candidate)
	return matchError == nil && isMatched
}

// normalizePattern converts a raw pattern to slash form and reports whether it
// is anchored at the traversal root.
func normalizePattern(pattern string) (string, bool) {
	normalized := toSlash(strings.TrimSpace(pattern))
	for strings.HasPrefix(normalized, currentDirectoryRef) {
		normalized = strings.TrimPrefix(normalized, currentDirectoryRef)
	}
	normalized = strings.TrimRight(normalized, pathSegmentSeparator)
	anchored := strings.HasPrefix(normalized, pathSegmentSeparator)
	normalized = strings.TrimLeft(normalized, pathSegmentSeparator)
	if strings.Contains(normalized, pathSegmentSeparator) {
		anchored = true
	}
	return normalized, anchored
}

func normalizePath(relativePath string) string {
	normalized := toSlash(relativePath)
	for strings.HasPrefix(normalized, currentDirectoryRef) {
		normalized = strings.TrimPrefix(normalized, currentDirectoryRef)
	}
	return strings.Trim(normalized, pathSegmentSeparator)
}

// toSlash rewrites backslashes only where they separate paths. Elsewhere a
// backslash escapes the next glob character.
func toSlash(value string) string {
	if filepath.Separator != '\\' {
		return value
	}
	return strings.ReplaceAll(value, "\\", pathSegmentSeparator)
}

// ParsePatternList splits comma-separated pattern lists, trimming whitespace
// and dropping empty items. Each value may itself hold several patterns.
func ParsePatternList(values ...string) []string {
	var patterns []string
	for _, value := range values {
		for _, item := range strings.Split(value, patternListSeparator) {
			trimmedItem := strings.TrimSpace(item)
			if trimmedItem == "" {
				continue
			}
			patterns = append(patterns, trimmedItem)
		}
	}
	return patterns
}
