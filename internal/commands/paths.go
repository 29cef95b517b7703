package commands

import (
	"os"
	"path/filepath"

	"github.com/temirov/dirsum/internal/types"
)

// ResolveRoot converts rootPath to an absolute directory path. Missing paths,
// regular files and paths that cannot be inspected produce an *InputError.
func ResolveRoot(rootPath string) (types.ValidatedPath, error) {
	absolutePath, absErr := filepath.Abs(rootPath)
	if absErr != nil {
		return types.ValidatedPath{}, &InputError{Path: rootPath, Err: absErr}
	}
	info, statErr := os.Stat(absolutePath)
	if statErr != nil {
		return types.ValidatedPath{}, &InputError{Path: rootPath, Err: statErr}
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, &InputError{Path: rootPath, Err: ErrNotDirectory}
	}
	return types.ValidatedPath{AbsolutePath: filepath.Clean(absolutePath), IsDir: true}, nil
}
