package stream

import (
	"time"

	"github.com/temirov/dirsum/internal/stats"
	"github.com/temirov/dirsum/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart     EventKind = "start"
	EventKindDirectory EventKind = "directory"
	EventKindFile      EventKind = "file"
	EventKindLink      EventKind = "link"
	EventKindTree      EventKind = "tree"
	EventKindSummary   EventKind = "summary"
	EventKindError     EventKind = "error"
	EventKindDone      EventKind = "done"
)

type DirectoryPhase string

const (
	DirectoryEnter DirectoryPhase = "enter"
	DirectoryLeave DirectoryPhase = "leave"
)

// Event is one message of a summary stream. Exactly one payload field is set
// for payload-carrying kinds.
type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Directory *DirectoryEvent `json:"directory,omitempty"`
	File      *FileEvent      `json:"file,omitempty"`
	Link      *LinkEvent      `json:"link,omitempty"`
	Tree      *types.TreeNode `json:"tree,omitempty"`
	Summary   *stats.Summary  `json:"summary,omitempty"`
	Err       *ErrorEvent     `json:"error,omitempty"`
}

type DirectoryEvent struct {
	Phase      DirectoryPhase `json:"phase"`
	Path       string         `json:"path"`
	Name       string         `json:"name,omitempty"`
	Depth      int            `json:"depth,omitempty"`
	Unreadable bool           `json:"unreadable,omitempty"`
}

type FileEvent struct {
	Name  string             `json:"name"`
	Depth int                `json:"depth,omitempty"`
	Block types.ContentBlock `json:"block"`
}

// LinkEvent covers symlinks and special files, which are listed but never read.
type LinkEvent struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Depth      int    `json:"depth,omitempty"`
	Type       string `json:"type"`
	Target     string `json:"target,omitempty"`
	Unreadable bool   `json:"unreadable,omitempty"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
