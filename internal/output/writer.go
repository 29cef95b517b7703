package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutputDestination is matched by every report write failure.
var ErrOutputDestination = errors.New("cannot write report")

var errDestinationIsDirectory = errors.New("destination is a directory")

const (
	temporaryFilePrefix  = ".dirsum-"
	temporaryFileSuffix  = ".tmp"
	temporaryFilePattern = temporaryFilePrefix + "*" + temporaryFileSuffix
	reportFileMode       = 0o644

	outputErrorFormat = "output file %s: %v"
)

// OutputError reports a destination that could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (outputError *OutputError) Error() string {
	return fmt.Sprintf(outputErrorFormat, outputError.Path, outputError.Err)
}

// Unwrap exposes both ErrOutputDestination and the underlying cause.
func (outputError *OutputError) Unwrap() []error {
	return []error{ErrOutputDestination, outputError.Err}
}

// WriteReport writes report to destinationPath through a temporary sibling
// file that replaces the destination only after it was fully written, so a
// failed run never leaves a partial report behind.
func WriteReport(destinationPath string, report RenderedReport) error {
	if info, statErr := os.Stat(destinationPath); statErr == nil && info.IsDir() {
		return &OutputError{Path: destinationPath, Err: errDestinationIsDirectory}
	}

	temporaryFile, createErr := os.CreateTemp(filepath.Dir(destinationPath), temporaryFilePattern)
	if createErr != nil {
		return &OutputError{Path: destinationPath, Err: createErr}
	}
	temporaryPath := temporaryFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(temporaryPath)
		}
	}()

	if _, writeErr := temporaryFile.Write(report.Bytes()); writeErr != nil {
		_ = temporaryFile.Close()
		return &OutputError{Path: destinationPath, Err: writeErr}
	}
	if syncErr := temporaryFile.Sync(); syncErr != nil {
		_ = temporaryFile.Close()
		return &OutputError{Path: destinationPath, Err: syncErr}
	}
	if closeErr := temporaryFile.Close(); closeErr != nil {
		return &OutputError{Path: destinationPath, Err: closeErr}
	}
	if chmodErr := os.Chmod(temporaryPath, reportFileMode); chmodErr != nil {
		return &OutputError{Path: destinationPath, Err: chmodErr}
	}
	if renameErr := os.Rename(temporaryPath, destinationPath); renameErr != nil {
		return &OutputError{Path: destinationPath, Err: renameErr}
	}
	committed = true
	return nil
}

// IsTemporaryFile reports whether name looks like a WriteReport staging file.
func IsTemporaryFile(name string) bool {
	baseName := filepath.Base(name)
	return strings.HasPrefix(baseName, temporaryFilePrefix) && strings.HasSuffix(baseName, temporaryFileSuffix)
}
