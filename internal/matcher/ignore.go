package matcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

const ignoreFileOpenFormat = "open ignore file %s: %w"

// IgnoreStack tracks the ignore-file matchers of every directory on the
// current traversal path. Push and Pop must be balanced by the caller.
type IgnoreStack struct {
	fileNames []string
	warn      WarningFunc
	layers    [][]gitignore.IgnoreMatcher
}

// NewIgnoreStack returns a stack reading the named ignore files (for example
// ".gitignore" and ".ignore") from each pushed directory. A stack with no file
// names never ignores anything.
func NewIgnoreStack(fileNames []string, warn WarningFunc) *IgnoreStack {
	return &IgnoreStack{fileNames: append([]string(nil), fileNames...), warn: warn}
}

// Push loads the ignore files of directoryPath. A layer is always added, even
// when the directory holds no ignore files, so that Pop stays symmetric.
func (stack *IgnoreStack) Push(directoryPath string) {
	var layer []gitignore.IgnoreMatcher
	for _, fileName := range stack.fileNames {
		ignoreFilePath := filepath.Join(directoryPath, fileName)
		fileInfo, statErr := os.Stat(ignoreFilePath)
		if statErr != nil {
			if !errors.Is(statErr, fs.ErrNotExist) && stack.warn != nil {
				stack.warn(ignoreFilePath, statErr)
			}
			continue
		}
		if fileInfo.IsDir() {
			continue
		}
		ignoreMatcher, loadErr := gitignore.NewGitIgnore(ignoreFilePath, directoryPath)
		if loadErr != nil {
			if stack.warn != nil {
				stack.warn(ignoreFilePath, fmt.Errorf(ignoreFileOpenFormat, ignoreFilePath, loadErr))
			}
			continue
		}
		layer = append(layer, ignoreMatcher)
	}
	stack.layers = append(stack.layers, layer)
}

// Pop discards the most recently pushed layer.
func (stack *IgnoreStack) Pop() {
	if len(stack.layers) == 0 {
		return
	}
	stack.layers = stack.layers[:len(stack.layers)-1]
}

// Depth reports the number of pushed layers.
func (stack *IgnoreStack) Depth() int {
	return len(stack.layers)
}

// Ignored reports whether any active layer ignores absolutePath.
func (stack *IgnoreStack) Ignored(absolutePath string, isDir bool) bool {
	for _, layer := range stack.layers {
		for _, ignoreMatcher := range layer {
			if ignoreMatcher.Match(absolutePath, isDir) {
				return true
			}
		}
	}
	return false
}
