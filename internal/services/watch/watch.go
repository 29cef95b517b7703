// Package watch regenerates a report whenever the summarized tree changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dirsum/internal/matcher"
	"github.com/temirov/dirsum/internal/output"
	"github.com/temirov/dirsum/internal/utils"
)

// DefaultDebounce is the quiet period that must follow the last change before
// the report is regenerated.
const DefaultDebounce = 500 * time.Millisecond

const (
	logWatchingMessage      = "watching for changes"
	logChangeMessage        = "change detected"
	logRegenerateMessage    = "regeneration failed"
	logWatchErrorMessage    = "watcher error"
	logAddDirectoryMessage  = "unable to watch directory"
	errorNilRegenerate      = "regenerate function is nil"
	errorCreateWatcher      = "create file watcher: %w"
	errorWatchRootDirectory = "watch %s: %w"
)

// RegenerateFunc rebuilds and writes the report. It is never called
// concurrently with itself.
type RegenerateFunc func(ctx context.Context) error

// Options configures Run.
type Options struct {
	Root            string
	OutputPath      string
	ExcludePatterns []string
	// IgnoreFileNames lists the per-directory ignore files honoured by the
	// walk, such as ".gitignore".
	IgnoreFileNames []string
	IncludeHidden   bool
	Debounce        time.Duration
	Logger          *zap.Logger
}

type treeWatcher struct {
	root            string
	outputPath      string
	hidden          bool
	pathMatcher     *matcher.PathMatcher
	ignoreFileNames []string
	fsWatcher       *fsnotify.Watcher
	logger          *zap.Logger
}

// Run watches Root recursively until ctx is cancelled. Bursts of changes are
// collapsed into a single call of regenerate once Debounce elapses without
// further changes. Changes to the output file and its staging files are
// ignored. Regeneration failures are logged and watching continues.
func Run(ctx context.Context, options Options, regenerate RegenerateFunc) error {
	if regenerate == nil {
		return errors.New(errorNilRegenerate)
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := options.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	absoluteRoot, absErr := filepath.Abs(options.Root)
	if absErr != nil {
		return fmt.Errorf(errorWatchRootDirectory, options.Root, absErr)
	}
	var absoluteOutput string
	if options.OutputPath != "" {
		if resolved, err := filepath.Abs(options.OutputPath); err == nil {
			absoluteOutput = resolved
		}
	}

	fsWatcher, createErr := fsnotify.NewWatcher()
	if createErr != nil {
		return fmt.Errorf(errorCreateWatcher, createErr)
	}
	defer fsWatcher.Close()

	watcher := &treeWatcher{
		root:            absoluteRoot,
		outputPath:      absoluteOutput,
		hidden:          options.IncludeHidden,
		pathMatcher:     matcher.NewPathMatcher(options.ExcludePatterns, nil),
		ignoreFileNames: append([]string(nil), options.IgnoreFileNames...),
		fsWatcher:       fsWatcher,
		logger:          logger,
	}
	if err := fsWatcher.Add(absoluteRoot); err != nil {
		return fmt.Errorf(errorWatchRootDirectory, absoluteRoot, err)
	}
	watcher.addSubdirectories(absoluteRoot)
	logger.Info(logWatchingMessage, zap.String("root", absoluteRoot), zap.Int("directories", len(fsWatcher.WatchList())))

	changes := make(chan string)
	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watcher.collect(groupContext, changes)
	})
	group.Go(func() error {
		return debounceChanges(groupContext, changes, debounce, func(regenerateContext context.Context) {
			if err := regenerate(regenerateContext); err != nil && regenerateContext.Err() == nil {
				logger.Error(logRegenerateMessage, zap.Error(err))
			}
		})
	})
	return group.Wait()
}

// collect forwards relevant filesystem events as changed paths and starts
// watching directories created under the root.
func (watcher *treeWatcher) collect(ctx context.Context, changes chan<- string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !watcher.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					watcher.addDirectory(event.Name)
					watcher.addSubdirectories(event.Name)
				}
			}
			select {
			case changes <- event.Name:
			case <-ctx.Done():
				return nil
			}
		case watchErr, ok := <-watcher.fsWatcher.Errors:
			if !ok {
				return nil
			}
			watcher.logger.Warn(logWatchErrorMessage, zap.Error(watchErr))
		}
	}
}

func debounceChanges(ctx context.Context, changes <-chan string, debounce time.Duration, fire func(context.Context)) error {
	var timer *time.Timer
	var timerChannel <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-changes:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerChannel = timer.C
		case <-timerChannel:
			timerChannel = nil
			fire(ctx)
		}
	}
}

func (watcher *treeWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	absolutePath := filepath.Clean(event.Name)
	if watcher.outputPath != "" && absolutePath == watcher.outputPath {
		return false
	}
	if output.IsTemporaryFile(absolutePath) {
		return false
	}
	info, statErr := os.Lstat(absolutePath)
	isDir := statErr == nil && info.IsDir()
	if watcher.excluded(absolutePath, isDir) {
		return false
	}
	watcher.logger.Debug(logChangeMessage, zap.String("path", absolutePath), zap.String("op", event.Op.String()))
	return true
}

func (watcher *treeWatcher) excluded(absolutePath string, isDir bool) bool {
	relativePath := utils.RelativePathOrSelf(absolutePath, watcher.root)
	if relativePath == "." {
		return false
	}
	if !watcher.hidden {
		for _, segment := range strings.Split(relativePath, "/") {
			if utils.IsHiddenName(segment) {
				return true
			}
		}
	}
	if watcher.pathMatcher.Matches(relativePath) {
		return true
	}
	return watcher.ignoredByFiles(relativePath, isDir)
}

// ignoredByFiles replays the ignore files of every directory from the root
// down to relativePath, so a path is ignored exactly when the walk would skip
// it or one of its ancestors.
func (watcher *treeWatcher) ignoredByFiles(relativePath string, isDir bool) bool {
	if len(watcher.ignoreFileNames) == 0 {
		return false
	}
	ignoreStack := matcher.NewIgnoreStack(watcher.ignoreFileNames, nil)
	segments := strings.Split(relativePath, "/")
	currentPath := watcher.root
	for segmentIndex, segment := range segments {
		ignoreStack.Push(currentPath)
		currentPath = filepath.Join(currentPath, segment)
		isLastSegment := segmentIndex == len(segments)-1
		if ignoreStack.Ignored(currentPath, isDir || !isLastSegment) {
			return true
		}
	}
	return false
}

func (watcher *treeWatcher) addDirectory(directoryPath string) {
	if err := watcher.fsWatcher.Add(directoryPath); err != nil {
		watcher.logger.Warn(logAddDirectoryMessage, zap.String("path", directoryPath), zap.Error(err))
	}
}

func (watcher *treeWatcher) addSubdirectories(directoryPath string) {
	walkErr := filepath.WalkDir(directoryPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			watcher.logger.Warn(logAddDirectoryMessage, zap.String("path", path), zap.Error(err))
			if entry != nil && entry.IsDir() && path != directoryPath {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() || path == directoryPath {
			return nil
		}
		if watcher.excluded(path, true) {
			return filepath.SkipDir
		}
		watcher.addDirectory(path)
		return nil
	})
	if walkErr != nil {
		watcher.logger.Warn(logAddDirectoryMessage, zap.String("path", directoryPath), zap.Error(walkErr))
	}
}
