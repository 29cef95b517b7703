package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrInputPath is matched by every fatal input problem.
	ErrInputPath = errors.New("invalid input directory")
	// ErrNotDirectory reports an input path that exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

const inputErrorFormat = "input directory %s: %v"

// InputError reports a root directory that is missing, not a directory or unreadable.
type InputError struct {
	Path string
	Err  error
}

func (inputError *InputError) Error() string {
	return fmt.Sprintf(inputErrorFormat, inputError.Path, inputError.Err)
}

// Unwrap exposes both ErrInputPath and the underlying cause.
func (inputError *InputError) Unwrap() []error {
	return []error{ErrInputPath, inputError.Err}
}
