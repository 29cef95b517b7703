// Package commands contains the traversal engine that collects directory trees,
// file contents and statistics.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/dirsum/internal/classifier"
	"github.com/temirov/dirsum/internal/matcher"
	"github.com/temirov/dirsum/internal/stats"
	"github.com/temirov/dirsum/internal/tokenizer"
	"github.com/temirov/dirsum/internal/types"
	"github.com/temirov/dirsum/internal/utils"
)

const (
	warningReadDirectoryMessage = "skipping unreadable directory"
	warningStatPathMessage      = "unable to stat entry"
	warningReadLinkMessage      = "unable to read symlink"
	warningIgnoreFileMessage    = "unable to load ignore file"
	warningPatternMessage       = "malformed exclusion pattern, matching literally"

	errorHandlerNil = "walk handler is nil"
)

// WalkEventKind identifies the kind of a WalkEvent.
type WalkEventKind int

const (
	WalkEventEnterDirectory WalkEventKind = iota
	WalkEventLeaveDirectory
	WalkEventFile
	WalkEventLink
	WalkEventSpecial
)

// Entry describes one visited path. RelativePath uses forward slashes and is
// empty for the root directory.
type Entry struct {
	Type         string
	Name         string
	RelativePath string
	AbsolutePath string
	Depth        int
	SizeBytes    int64
	MimeType     string
	Lines        []string
	ReadError    error
	LinkTarget   string
	Unreadable   bool
	Tokens       int
}

// WalkEvent is delivered to the handler in traversal order.
type WalkEvent struct {
	Kind  WalkEventKind
	Entry *Entry
}

// WalkOptions configures a TreeWalker.
type WalkOptions struct {
	Root            string
	ExcludePatterns []string
	IgnoreFileNames []string
	IncludeHidden   bool
	// SkipPaths lists absolute paths that are never visited, such as the report file.
	SkipPaths    []string
	Classifier   classifier.FileClassifier
	TokenCounter tokenizer.Counter
	TokenModel   string
	Logger       *zap.Logger
}

// TreeWalker performs a single synchronous depth-first traversal. Siblings are
// visited in byte order of their names, directories and files interleaved.
type TreeWalker struct {
	options     WalkOptions
	logger      *zap.Logger
	pathMatcher *matcher.PathMatcher
	ignoreStack *matcher.IgnoreStack
	skipPaths   map[string]struct{}
	statistics  *stats.Statistics
	handler     func(WalkEvent) error
}

// NewTreeWalker prepares a walker. Malformed exclusion patterns are logged and
// matched literally.
func NewTreeWalker(options WalkOptions) *TreeWalker {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Classifier == nil {
		options.Classifier = classifier.ContentClassifier{}
	}

	walker := &TreeWalker{options: options, logger: logger}
	walker.pathMatcher = matcher.NewPathMatcher(options.ExcludePatterns, func(pattern string, err error) {
		logger.Warn(warningPatternMessage, zap.String("pattern", pattern), zap.Error(err))
	})
	walker.ignoreStack = matcher.NewIgnoreStack(options.IgnoreFileNames, func(path string, err error) {
		logger.Warn(warningIgnoreFileMessage, zap.String("path", path), zap.Error(err))
	})
	walker.skipPaths = make(map[string]struct{}, len(options.SkipPaths))
	for _, skipPath := range options.SkipPaths {
		if absolutePath, absErr := filepath.Abs(skipPath); absErr == nil {
			walker.skipPaths[filepath.Clean(absolutePath)] = struct{}{}
		}
	}
	return walker
}

// Run walks the configured root, calling handler for every event, and returns
// the accumulated statistics. The root counts as a directory. A root that
// cannot be resolved or listed yields an *InputError; handler errors and
// context cancellation abort the walk and are returned unchanged.
func (walker *TreeWalker) Run(ctx context.Context, handler func(WalkEvent) error) (*stats.Statistics, error) {
	if handler == nil {
		return nil, errors.New(errorHandlerNil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	root, resolveErr := ResolveRoot(walker.options.Root)
	if resolveErr != nil {
		return nil, resolveErr
	}
	rootEntries, readErr := os.ReadDir(root.AbsolutePath)
	if readErr != nil {
		return nil, &InputError{Path: walker.options.Root, Err: readErr}
	}

	walker.handler = handler
	walker.statistics = stats.New()
	rootEntry := &Entry{
		Type:         types.NodeTypeDirectory,
		Name:         filepath.Base(root.AbsolutePath),
		AbsolutePath: root.AbsolutePath,
	}
	if walkErr := walker.walkDirectory(ctx, rootEntry, rootEntries); walkErr != nil {
		return nil, walkErr
	}
	return walker.statistics, nil
}

func (walker *TreeWalker) walkDirectory(ctx context.Context, directory *Entry, entries []os.DirEntry) error {
	walker.statistics.AddDirectory()
	if err := walker.handler(WalkEvent{Kind: WalkEventEnterDirectory, Entry: directory}); err != nil {
		return err
	}

	if !directory.Unreadable {
		walker.ignoreStack.Push(directory.AbsolutePath)
		childErr := walker.walkChildren(ctx, directory, entries)
		walker.ignoreStack.Pop()
		if childErr != nil {
			return childErr
		}
	}

	return walker.handler(WalkEvent{Kind: WalkEventLeaveDirectory, Entry: directory})
}

func (walker *TreeWalker) walkChildren(ctx context.Context, directory *Entry, entries []os.DirEntry) error {
	for _, directoryEntry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryName := directoryEntry.Name()
		absolutePath := filepath.Join(directory.AbsolutePath, entryName)
		relativePath := entryName
		if directory.RelativePath != "" {
			relativePath = directory.RelativePath + "/" + entryName
		}
		if walker.isExcluded(entryName, relativePath, absolutePath, directoryEntry.IsDir()) {
			continue
		}

		entryInfo, infoErr := directoryEntry.Info()
		if infoErr != nil {
			walker.logger.Warn(warningStatPathMessage, zap.String("path", absolutePath), zap.Error(infoErr))
			continue
		}

		child := &Entry{
			Name:         entryName,
			RelativePath: relativePath,
			AbsolutePath: absolutePath,
			Depth:        directory.Depth + 1,
		}
		var visitErr error
		switch mode := entryInfo.Mode(); {
		case mode&fs.ModeSymlink != 0:
			visitErr = walker.visitLink(child)
		case mode.IsDir():
			visitErr = walker.visitDirectory(ctx, child)
		case mode.IsRegular():
			visitErr = walker.visitFile(child, entryInfo)
		default:
			child.Type = types.NodeTypeSpecial
			visitErr = walker.handler(WalkEvent{Kind: WalkEventSpecial, Entry: child})
		}
		if visitErr != nil {
			return visitErr
		}
	}
	return nil
}

func (walker *TreeWalker) isExcluded(entryName, relativePath, absolutePath string, isDir bool) bool {
	if _, skipped := walker.skipPaths[absolutePath]; skipped {
		return true
	}
	if !walker.options.IncludeHidden && utils.IsHiddenName(entryName) {
		return true
	}
	if walker.pathMatcher.Matches(relativePath) {
		return true
	}
	return walker.ignoreStack.Ignored(absolutePath, isDir)
}

// visitDirectory lists the directory before announcing it so that an
// unreadable directory is reported once, marked, and not descended.
func (walker *TreeWalker) visitDirectory(ctx context.Context, directory *Entry) error {
	directory.Type = types.NodeTypeDirectory
	entries, readErr := os.ReadDir(directory.AbsolutePath)
	if readErr != nil {
		walker.logger.Warn(warningReadDirectoryMessage, zap.String("path", directory.AbsolutePath), zap.Error(readErr))
		directory.Unreadable = true
		entries = nil
	}
	return walker.walkDirectory(ctx, directory, entries)
}

func (walker *TreeWalker) visitLink(link *Entry) error {
	link.Type = types.NodeTypeSymlink
	target, readLinkErr := os.Readlink(link.AbsolutePath)
	if readLinkErr != nil {
		walker.logger.Warn(warningReadLinkMessage, zap.String("path", link.AbsolutePath), zap.Error(readLinkErr))
		link.Unreadable = true
	} else {
		link.LinkTarget = filepath.ToSlash(target)
	}
	return walker.handler(WalkEvent{Kind: WalkEventLink, Entry: link})
}

func (walker *TreeWalker) visitFile(file *Entry, info fs.FileInfo) error {
	result := inspectFile(file.AbsolutePath, info, fileInspectionConfig{
		Classifier:   walker.options.Classifier,
		TokenCounter: walker.options.TokenCounter,
		Logger:       walker.logger,
	})
	file.Type = result.Type
	file.SizeBytes = info.Size()
	file.MimeType = result.MimeType
	file.Lines = result.Lines
	file.ReadError = result.ReadError
	file.Tokens = result.Tokens

	if file.Type == types.NodeTypeFile {
		walker.statistics.AddTextFile(file.Name, len(file.Lines))
	} else {
		walker.statistics.AddBinaryFile(file.Name)
	}
	if file.Tokens > 0 {
		walker.statistics.AddTokens(file.Tokens, walker.options.TokenModel)
	}
	return walker.handler(WalkEvent{Kind: WalkEventFile, Entry: file})
}

// String names the event kind for log fields.
func (kind WalkEventKind) String() string {
	switch kind {
	case WalkEventEnterDirectory:
		return "enter"
	case WalkEventLeaveDirectory:
		return "leave"
	case WalkEventFile:
		return "file"
	case WalkEventLink:
		return "link"
	case WalkEventSpecial:
		return "special"
	default:
		return fmt.Sprintf("WalkEventKind(%d)", int(kind))
	}
}
