// Package utils contains general helper functions shared by the dirsum packages.
package utils

import (
	"path/filepath"
	"strings"
)

const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// HiddenNamePrefix marks dot-files and dot-directories.
	HiddenNamePrefix = "."
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; exists {
			continue
		}
		encounteredPatterns[pattern] = struct{}{}
		result = append(result, pattern)
	}
	return result
}

// IsHiddenName reports whether an entry name starts with a dot.
// The special names "." and ".." are not considered hidden.
func IsHiddenName(entryName string) bool {
	if entryName == "." || entryName == ".." {
		return false
	}
	return strings.HasPrefix(entryName, HiddenNamePrefix)
}

// RelativePathOrSelf calculates the slash-separated relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, absErr := filepath.Abs(root)
	if absErr != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)
	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// IsWithinRoot reports whether absolutePath lies strictly inside absoluteRoot.
func IsWithinRoot(absolutePath, absoluteRoot string) bool {
	relativePath, relErr := filepath.Rel(filepath.Clean(absoluteRoot), filepath.Clean(absolutePath))
	if relErr != nil || relativePath == "." {
		return false
	}
	return relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator))
}
