package commands

import (
	"fmt"

	"github.com/temirov/dirsum/internal/types"
)

const errorDirectoryStackFormat = "directory stack mismatch for %q"

// TreeBuilder assembles walk events into a types.TreeNode hierarchy. Feed it
// every event of one walk through Handle; Root is complete once the root
// directory has been left.
type TreeBuilder struct {
	stack []*types.TreeNode
	root  *types.TreeNode
}

// Handle records one walk event.
func (treeBuilder *TreeBuilder) Handle(event WalkEvent) error {
	entry := event.Entry
	switch event.Kind {
	case WalkEventEnterDirectory:
		node := NodeForEntry(entry)
		treeBuilder.attach(node)
		treeBuilder.stack = append(treeBuilder.stack, node)
	case WalkEventLeaveDirectory:
		if len(treeBuilder.stack) == 0 {
			return fmt.Errorf(errorDirectoryStackFormat, entry.RelativePath)
		}
		top := treeBuilder.stack[len(treeBuilder.stack)-1]
		if top.Path != entry.RelativePath {
			return fmt.Errorf(errorDirectoryStackFormat, entry.RelativePath)
		}
		treeBuilder.stack = treeBuilder.stack[:len(treeBuilder.stack)-1]
	case WalkEventFile, WalkEventLink, WalkEventSpecial:
		treeBuilder.attach(NodeForEntry(entry))
	}
	return nil
}

func (treeBuilder *TreeBuilder) attach(node *types.TreeNode) {
	if len(treeBuilder.stack) == 0 {
		treeBuilder.root = node
		return
	}
	parent := treeBuilder.stack[len(treeBuilder.stack)-1]
	parent.Children = append(parent.Children, node)
}

// Root returns the assembled tree, or nil before any event was handled.
func (treeBuilder *TreeBuilder) Root() *types.TreeNode {
	return treeBuilder.root
}

// NodeForEntry converts a walk entry into a childless tree node.
func NodeForEntry(entry *Entry) *types.TreeNode {
	node := &types.TreeNode{
		Path:       entry.RelativePath,
		Name:       entry.Name,
		Type:       entry.Type,
		LinkTarget: entry.LinkTarget,
		Unreadable: entry.Unreadable,
	}
	if entry.Type == types.NodeTypeFile || entry.Type == types.NodeTypeBinary {
		node.SizeBytes = entry.SizeBytes
	}
	return node
}

// ContentBlockForEntry converts a file entry into its content section block.
func ContentBlockForEntry(entry *Entry) types.ContentBlock {
	block := types.ContentBlock{
		Path:      entry.RelativePath,
		Type:      entry.Type,
		SizeBytes: entry.SizeBytes,
		MimeType:  entry.MimeType,
		Lines:     entry.Lines,
		Tokens:    entry.Tokens,
	}
	if entry.ReadError != nil {
		block.ReadError = entry.ReadError.Error()
	}
	return block
}
