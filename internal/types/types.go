// Package types defines every cross‑package data structure used by the dirsum CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeBinary    = "binary"
	NodeTypeSymlink   = "symlink"
	NodeTypeSpecial   = "special"

	FormatRaw  = "raw"
	FormatJSON = "json"
)

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// TreeNode is one entry of the rendered directory tree. Path is relative to
// the traversal root using forward slashes; the root itself has an empty Path.
type TreeNode struct {
	Path       string      `json:"path"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	SizeBytes  int64       `json:"sizeBytes,omitempty"`
	LinkTarget string      `json:"linkTarget,omitempty"`
	Unreadable bool        `json:"unreadable,omitempty"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// ContentBlock is one file of the content section.
type ContentBlock struct {
	Path      string   `json:"path"`
	Type      string   `json:"type"`
	SizeBytes int64    `json:"sizeBytes"`
	MimeType  string   `json:"mimeType,omitempty"`
	Lines     []string `json:"lines,omitempty"`
	ReadError string   `json:"error,omitempty"`
	Tokens    int      `json:"tokens,omitempty"`
}
