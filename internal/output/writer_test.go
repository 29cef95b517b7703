package output_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/dirsum/internal/output"
)

func TestWriteReportReplacesDestination(t *testing.T) {
	directory := t.TempDir()
	destination := filepath.Join(directory, "summary.txt")
	if err := os.WriteFile(destination, []byte("stale"), 0o600); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	report := output.RenderedReport{Lines: []string{"proj/", "└── a.txt"}}
	if err := output.WriteReport(destination, report); err != nil {
		t.Fatalf("write report: %v", err)
	}
	written, err := os.ReadFile(destination)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(written) != "proj/\n└── a.txt\n" {
		t.Fatalf("unexpected content %q", written)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the destination to remain, got %d entries", len(entries))
	}
}

func TestWriteReportErrors(t *testing.T) {
	directory := t.TempDir()
	testCases := []struct {
		name        string
		destination string
	}{
		{name: "destination is a directory", destination: directory},
		{name: "parent missing", destination: filepath.Join(directory, "missing", "summary.txt")},
	}
	for _, testCase := range testCases {
		err := output.WriteReport(testCase.destination, output.RenderedReport{Lines: []string{"x"}})
		var outputError *output.OutputError
		if !errors.As(err, &outputError) || !errors.Is(err, output.ErrOutputDestination) {
			t.Fatalf("%s: expected OutputError, got %v", testCase.name, err)
		}
		if outputError.Path != testCase.destination {
			t.Fatalf("%s: unexpected path %q", testCase.name, outputError.Path)
		}
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if output.IsTemporaryFile(entry.Name()) {
			t.Fatalf("temporary file %s left behind", entry.Name())
		}
	}
}

func TestIsTemporaryFile(t *testing.T) {
	testCases := map[string]bool{
		".dirsum-123.tmp":       true,
		"/work/.dirsum-abc.tmp": true,
		"summary.txt":           false,
		".dirsum.yaml":          false,
		"notes.tmp":             false,
	}
	for name, expected := range testCases {
		if actual := output.IsTemporaryFile(name); actual != expected {
			t.Errorf("IsTemporaryFile(%q) = %v, want %v", name, actual, expected)
		}
	}
}
