package stream_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/dirsum/internal/commands"
	"github.com/temirov/dirsum/internal/services/stream"
	"github.com/temirov/dirsum/internal/types"
)

type stubCounter struct{}

func (stubCounter) Name() string { return "stub" }

func (stubCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestStreamSummaryEmitsOrderedEvents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "example.txt"), []byte("tree\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	events := collectEvents(t, func(ch chan<- stream.Event) error {
		options := commands.WalkOptions{Root: root, TokenCounter: stubCounter{}, TokenModel: "stub-model"}
		return stream.StreamSummary(context.Background(), options, ch)
	})

	expectedKinds := []stream.EventKind{
		stream.EventKindStart,
		stream.EventKindDirectory,
		stream.EventKindDirectory,
		stream.EventKindFile,
		stream.EventKindDirectory,
		stream.EventKindDirectory,
		stream.EventKindTree,
		stream.EventKindSummary,
		stream.EventKindDone,
	}
	if len(events) != len(expectedKinds) {
		t.Fatalf("expected %d events, got %d", len(expectedKinds), len(events))
	}
	for index, event := range events {
		if event.Kind != expectedKinds[index] {
			t.Fatalf("event %d: expected %s, got %s", index, expectedKinds[index], event.Kind)
		}
		if event.Version != stream.SchemaVersion || event.EmittedAt.IsZero() {
			t.Fatalf("event %d missing envelope fields: %+v", index, event)
		}
	}

	if events[1].Directory.Phase != stream.DirectoryEnter || events[4].Directory.Phase != stream.DirectoryLeave {
		t.Fatalf("unexpected directory phases")
	}
	file := events[3].File
	if file.Block.Path != "nested/example.txt" || file.Block.Type != types.NodeTypeFile || len(file.Block.Lines) != 1 {
		t.Fatalf("unexpected file block %+v", file.Block)
	}
	if file.Block.Tokens != len("tree\n") {
		t.Fatalf("expected token count to be propagated, got %d", file.Block.Tokens)
	}

	tree := events[6].Tree
	if tree == nil || tree.Path != "" || tree.Name != filepath.Base(root) || len(tree.Children) != 1 {
		t.Fatalf("unexpected tree %+v", tree)
	}

	summary := events[7].Summary
	if summary.TotalFiles != 1 || summary.TotalDirectories != 2 || summary.TotalLines != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.TotalTokens != len("tree\n") || summary.TokenModel != "stub-model" {
		t.Fatalf("unexpected token summary %+v", summary)
	}
}

func TestStreamSummaryEmitsLinkEvents(t *testing.T) {
	root := t.TempDir()
	if err := os.Symlink("missing-target", filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	events := collectEvents(t, func(ch chan<- stream.Event) error {
		return stream.StreamSummary(context.Background(), commands.WalkOptions{Root: root}, ch)
	})
	for _, event := range events {
		if event.Kind != stream.EventKindLink {
			continue
		}
		if event.Link.Type != types.NodeTypeSymlink || event.Link.Target != "missing-target" {
			t.Fatalf("unexpected link event %+v", event.Link)
		}
		return
	}
	t.Fatalf("expected a link event")
}

func TestStreamSummaryReportsInputErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	events := make(chan stream.Event, 8)
	err := stream.StreamSummary(context.Background(), commands.WalkOptions{Root: missing}, events)
	close(events)
	if !errors.Is(err, commands.ErrInputPath) {
		t.Fatalf("expected input error, got %v", err)
	}
	var kinds []stream.EventKind
	for event := range events {
		kinds = append(kinds, event.Kind)
	}
	if len(kinds) != 2 || kinds[0] != stream.EventKindStart || kinds[1] != stream.EventKindError {
		t.Fatalf("expected start and error events, got %v", kinds)
	}
}

func TestStreamSummaryStopsWhenContextCancelled(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := stream.StreamSummary(ctx, commands.WalkOptions{Root: root}, make(chan stream.Event))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStreamSummaryRejectsNilChannel(t *testing.T) {
	if err := stream.StreamSummary(context.Background(), commands.WalkOptions{Root: t.TempDir()}, nil); err == nil {
		t.Fatalf("expected error for nil channel")
	}
}

func collectEvents(t *testing.T, producer func(chan<- stream.Event) error) []stream.Event {
	t.Helper()
	events := make(chan stream.Event, 32)
	errCh := make(chan error, 1)
	go func() {
		errCh <- producer(events)
		close(events)
	}()

	var out []stream.Event
	for event := range events {
		out = append(out, event)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("producer returned error: %v", err)
	}
	return out
}
