// Package clipboard copies rendered reports to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard utility can be used.
var ErrClipboardUnavailable = errors.New("system clipboard unavailable")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	writeAll    func(string) error
	unsupported bool
}

// NewService constructs a clipboard service backed by the system clipboard.
func NewService() *Service {
	return &Service{writeAll: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported {
		return ErrClipboardUnavailable
	}
	writeAll := service.writeAll
	if writeAll == nil {
		writeAll = clipboard.WriteAll
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// CopyReport copies a rendered report and returns the number of bytes copied.
// Empty reports are not copied.
func CopyReport(copier Copier, report fmt.Stringer) (int, error) {
	if copier == nil {
		return 0, ErrClipboardUnavailable
	}
	text := report.String()
	if text == "" {
		return 0, nil
	}
	if err := copier.Copy(text); err != nil {
		return 0, err
	}
	return len(text), nil
}

var _ Copier = (*Service)(nil)
