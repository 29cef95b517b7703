package stream

import (
	"context"
	"errors"
	"time"

	"github.com/temirov/dirsum/internal/commands"
)

var errNilChannel = errors.New("stream: event channel is nil")

type emitter struct {
	ctx context.Context
	out chan<- Event
}

func newEmitter(ctx context.Context, out chan<- Event) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return errNilChannel
	}
	event.Version = SchemaVersion
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

// StreamSummary walks options.Root and publishes every entry on out in
// traversal order, followed by the assembled tree, the statistics and a done
// event. The caller owns out and closes it after StreamSummary returns.
func StreamSummary(ctx context.Context, options commands.WalkOptions, out chan<- Event) error {
	emitter := newEmitter(ctx, out)
	if err := emitter.send(Event{Kind: EventKindStart, Path: options.Root}); err != nil {
		return err
	}

	treeBuilder := &commands.TreeBuilder{}
	handler := func(walkEvent commands.WalkEvent) error {
		if err := treeBuilder.Handle(walkEvent); err != nil {
			return err
		}
		return emitter.send(eventForWalk(walkEvent))
	}

	statistics, walkErr := commands.NewTreeWalker(options).Run(emitter.ctx, handler)
	if walkErr != nil {
		if !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			_ = emitter.send(Event{Kind: EventKindError, Path: options.Root, Err: &ErrorEvent{Message: walkErr.Error()}})
		}
		return walkErr
	}

	if err := emitter.send(Event{Kind: EventKindTree, Path: options.Root, Tree: treeBuilder.Root()}); err != nil {
		return err
	}
	summary := statistics.Snapshot()
	if err := emitter.send(Event{Kind: EventKindSummary, Path: options.Root, Summary: &summary}); err != nil {
		return err
	}
	return emitter.send(Event{Kind: EventKindDone, Path: options.Root})
}

func eventForWalk(walkEvent commands.WalkEvent) Event {
	entry := walkEvent.Entry
	switch walkEvent.Kind {
	case commands.WalkEventEnterDirectory, commands.WalkEventLeaveDirectory:
		phase := DirectoryEnter
		if walkEvent.Kind == commands.WalkEventLeaveDirectory {
			phase = DirectoryLeave
		}
		return Event{
			Kind: EventKindDirectory,
			Path: entry.RelativePath,
			Directory: &DirectoryEvent{
				Phase:      phase,
				Path:       entry.RelativePath,
				Name:       entry.Name,
				Depth:      entry.Depth,
				Unreadable: entry.Unreadable,
			},
		}
	case commands.WalkEventFile:
		return Event{
			Kind: EventKindFile,
			Path: entry.RelativePath,
			File: &FileEvent{
				Name:  entry.Name,
				Depth: entry.Depth,
				Block: commands.ContentBlockForEntry(entry),
			},
		}
	default:
		return Event{
			Kind: EventKindLink,
			Path: entry.RelativePath,
			Link: &LinkEvent{
				Path:       entry.RelativePath,
				Name:       entry.Name,
				Depth:      entry.Depth,
				Type:       entry.Type,
				Target:     entry.LinkTarget,
				Unreadable: entry.Unreadable,
			},
		}
	}
}
