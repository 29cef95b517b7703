package output

import (
	"errors"

	"github.com/temirov/dirsum/internal/services/stream"
	"github.com/temirov/dirsum/internal/stats"
	"github.com/temirov/dirsum/internal/types"
)

var (
	errIncompleteStream = errors.New("report stream ended before completion")
	errStreamFailed     = errors.New("report stream failed")
)

// StreamRenderer consumes summary stream events and assembles the report once
// the stream is done.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Report() (RenderedReport, error)
}

// NewStreamRenderer returns the renderer for format, defaulting to raw text.
func NewStreamRenderer(format string) StreamRenderer {
	if format == types.FormatJSON {
		return &jsonStreamRenderer{}
	}
	return &rawStreamRenderer{}
}

// reportCollector keeps the parts of a stream both renderers need.
type reportCollector struct {
	tree      *types.TreeNode
	blocks    []types.ContentBlock
	summary   *stats.Summary
	streamErr string
	done      bool
}

func (collector *reportCollector) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindFile:
		if event.File != nil {
			collector.blocks = append(collector.blocks, event.File.Block)
		}
	case stream.EventKindTree:
		collector.tree = event.Tree
	case stream.EventKindSummary:
		collector.summary = event.Summary
	case stream.EventKindError:
		if event.Err != nil {
			collector.streamErr = event.Err.Message
		}
	case stream.EventKindDone:
		collector.done = true
	}
	return nil
}

func (collector *reportCollector) complete() error {
	if collector.streamErr != "" {
		return errors.Join(errStreamFailed, errors.New(collector.streamErr))
	}
	if !collector.done || collector.tree == nil || collector.summary == nil {
		return errIncompleteStream
	}
	return nil
}
