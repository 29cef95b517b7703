package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/dirsum/internal/matcher"
)

const (
	testDebounce     = 50 * time.Millisecond
	testEventTimeout = 5 * time.Second
)

func startWatch(t *testing.T, options Options) (<-chan struct{}, context.CancelFunc, <-chan error) {
	t.Helper()
	regenerated := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	result := make(chan error, 1)
	go func() {
		result <- Run(ctx, options, func(context.Context) error {
			regenerated <- struct{}{}
			return nil
		})
	}()
	// Let Run register the tree before the test starts changing it.
	time.Sleep(4 * testDebounce)
	return regenerated, cancel, result
}

func awaitRegeneration(t *testing.T, regenerated <-chan struct{}) {
	t.Helper()
	select {
	case <-regenerated:
	case <-time.After(testEventTimeout):
		t.Fatalf("expected regeneration within %s", testEventTimeout)
	}
}

func TestRunRegeneratesAfterChange(t *testing.T) {
	root := t.TempDir()
	regenerated, cancel, result := startWatch(t, Options{Root: root, Debounce: testDebounce, Logger: zap.NewNop()})

	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	awaitRegeneration(t, regenerated)

	cancel()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("expected nil error after cancellation, got %v", err)
		}
	case <-time.After(testEventTimeout):
		t.Fatalf("watch did not stop after cancellation")
	}
}

func TestRunWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	regenerated, _, _ := startWatch(t, Options{Root: root, Debounce: testDebounce})

	subdirectory := filepath.Join(root, "pkg")
	if err := os.Mkdir(subdirectory, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	awaitRegeneration(t, regenerated)

	if err := os.WriteFile(filepath.Join(subdirectory, "lib.go"), []byte("package pkg\n"), 0o644); err != nil {
		t.Fatalf("write nested file: %v", err)
	}
	awaitRegeneration(t, regenerated)
}

func TestRunRejectsNilRegenerate(t *testing.T) {
	if err := Run(context.Background(), Options{Root: t.TempDir()}, nil); err == nil {
		t.Fatalf("expected error for nil regenerate function")
	}
}

func TestRunRejectsMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	err := Run(context.Background(), Options{Root: missing}, func(context.Context) error { return nil })
	if err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestRelevantFiltersEvents(t *testing.T) {
	root := t.TempDir()
	outputPath := filepath.Join(root, "summary.txt")
	watcher := &treeWatcher{
		root:        root,
		outputPath:  outputPath,
		pathMatcher: matcher.NewPathMatcher([]string{"target", ".git"}, nil),
		logger:      zap.NewNop(),
	}
	testCases := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{name: "source_write", event: fsnotify.Event{Name: filepath.Join(root, "src", "main.go"), Op: fsnotify.Write}, expected: true},
		{name: "removal", event: fsnotify.Event{Name: filepath.Join(root, "old.go"), Op: fsnotify.Remove}, expected: true},
		{name: "chmod_only", event: fsnotify.Event{Name: filepath.Join(root, "main.go"), Op: fsnotify.Chmod}, expected: false},
		{name: "output_file", event: fsnotify.Event{Name: outputPath, Op: fsnotify.Write}, expected: false},
		{name: "staging_file", event: fsnotify.Event{Name: filepath.Join(root, ".dirsum-123.tmp"), Op: fsnotify.Create}, expected: false},
		{name: "excluded_directory", event: fsnotify.Event{Name: filepath.Join(root, "target", "app"), Op: fsnotify.Create}, expected: false},
		{name: "hidden_entry", event: fsnotify.Event{Name: filepath.Join(root, ".cache", "x"), Op: fsnotify.Write}, expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := watcher.relevant(testCase.event); actual != testCase.expected {
				t.Fatalf("relevant(%v) = %v, expected %v", testCase.event, actual, testCase.expected)
			}
		})
	}

	watcher.hidden = true
	if !watcher.relevant(fsnotify.Event{Name: filepath.Join(root, ".cache", "x"), Op: fsnotify.Write}) {
		t.Fatalf("expected hidden entries to be relevant when hidden files are included")
	}
}

func TestDebounceCollapsesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan string)
	var fired atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- debounceChanges(ctx, changes, 100*time.Millisecond, func(context.Context) {
			fired.Add(1)
		})
	}()
	for index := 0; index < 5; index++ {
		changes <- "file"
	}
	deadline := time.Now().Add(testEventTimeout)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected one regeneration for a burst, got %d", fired.Load())
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestIgnoreFilesLimitWatchedDirectories(t *testing.T) {
	root := t.TempDir()
	for _, directory := range []string{"node_modules/a/b", "node_modules/c", "src/gen", "src/lib"} {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(directory)), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", directory, err)
		}
	}
	files := map[string]string{
		".gitignore":     "node_modules\n",
		"src/.ignore":    "gen/\n",
		"src/lib/x.js":   "x\n",
		"src/gen/out.js": "x\n",
	}
	for relativePath, content := range files {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(relativePath)), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}
	defer fsWatcher.Close()
	if err := fsWatcher.Add(root); err != nil {
		t.Fatalf("watch root: %v", err)
	}
	watcher := &treeWatcher{
		root:            root,
		pathMatcher:     matcher.NewPathMatcher(nil, nil),
		ignoreFileNames: []string{".gitignore", ".ignore"},
		fsWatcher:       fsWatcher,
		logger:          zap.NewNop(),
	}
	watcher.addSubdirectories(root)

	watched := fsWatcher.WatchList()
	sort.Strings(watched)
	expected := []string{root, filepath.Join(root, "src"), filepath.Join(root, "src", "lib")}
	sort.Strings(expected)
	if len(watched) != len(expected) {
		t.Fatalf("expected watched directories %v, got %v", expected, watched)
	}
	for index := range expected {
		if watched[index] != expected[index] {
			t.Fatalf("expected watched directories %v, got %v", expected, watched)
		}
	}

	testCases := []struct {
		name         string
		relativePath string
		expected     bool
	}{
		{name: "ignored_directory_content", relativePath: "node_modules/c/x.js", expected: false},
		{name: "nested_ignore_file", relativePath: "src/gen/out.js", expected: false},
		{name: "kept_source", relativePath: "src/lib/x.js", expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			event := fsnotify.Event{Name: filepath.Join(root, filepath.FromSlash(testCase.relativePath)), Op: fsnotify.Write}
			if actual := watcher.relevant(event); actual != testCase.expected {
				t.Fatalf("relevant(%s) = %v, expected %v", testCase.relativePath, actual, testCase.expected)
			}
		})
	}
}
