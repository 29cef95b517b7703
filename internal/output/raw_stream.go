package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/temirov/dirsum/internal/stats"
	"github.com/temirov/dirsum/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	directorySuffix     = "/"

	symlinkNodeFormat     = "%s -> %s [symlink]"
	unreadableLinkFormat  = "%s -> [unreadable link]"
	specialNodeFormat     = "%s [special]"
	unreadableDirFormat   = "%s%s [unreadable]"
	contentHeaderFormat   = "%s:"
	numberedLineFormat    = "%*d: %s"
	emptyNumberedFormat   = "%*d:"
	binaryOmittedFormat   = "(binary file, contents omitted: %s)"
	readErrorFormat       = "(error reading file: %s)"
	contentRuleWidth      = 80
	contentRuleCharacter  = "-"
	statisticsHeader      = "Project Statistics"
	statisticsUnderline   = "=================="
	totalFilesFormat      = "Total files: %d"
	totalDirectoriesFmt   = "Total directories: %d"
	totalLinesFormat      = "Total lines of code: %d"
	totalTokensFormat     = "Total tokens (%s): %d"
	fileTypesHeader       = "File types:"
	extensionBucketFormat = "  %s: %d files, %d lines"
)

var contentRule = strings.Repeat(contentRuleCharacter, contentRuleWidth)

type rawStreamRenderer struct {
	reportCollector
}

func (renderer *rawStreamRenderer) Report() (RenderedReport, error) {
	if err := renderer.complete(); err != nil {
		return RenderedReport{}, err
	}
	lines := RenderTreeSection(renderer.tree)
	lines = append(lines, "")
	lines = append(lines, RenderContentSection(renderer.blocks)...)
	lines = append(lines, RenderStatisticsSection(*renderer.summary)...)
	return RenderedReport{Format: types.FormatRaw, Lines: lines}, nil
}

// RenderTreeSection draws root and its descendants with box-drawing connectors.
// The root is labelled with its name and a trailing slash.
func RenderTreeSection(root *types.TreeNode) []string {
	if root == nil {
		return nil
	}
	lines := []string{treeNodeLabel(root)}
	return appendTreeChildren(lines, root.Children, "")
}

func appendTreeChildren(lines []string, children []*types.TreeNode, prefix string) []string {
	for index, child := range children {
		connector, childPrefix := treeBranchConnector, prefix+treeBranchPadding
		if index == len(children)-1 {
			connector, childPrefix = treeLastConnector, prefix+treeLastPadding
		}
		lines = append(lines, prefix+connector+treeNodeLabel(child))
		if child.Type == types.NodeTypeDirectory {
			lines = appendTreeChildren(lines, child.Children, childPrefix)
		}
	}
	return lines
}

func treeNodeLabel(node *types.TreeNode) string {
	switch node.Type {
	case types.NodeTypeDirectory:
		if node.Unreadable {
			return fmt.Sprintf(unreadableDirFormat, node.Name, directorySuffix)
		}
		return node.Name + directorySuffix
	case types.NodeTypeSymlink:
		if node.Unreadable {
			return fmt.Sprintf(unreadableLinkFormat, node.Name)
		}
		return fmt.Sprintf(symlinkNodeFormat, node.Name, node.LinkTarget)
	case types.NodeTypeSpecial:
		return fmt.Sprintf(specialNodeFormat, node.Name)
	default:
		return node.Name
	}
}

// RenderContentSection renders one block per file: a header, a dashed rule,
// the numbered lines or a placeholder, a closing rule and a blank line.
func RenderContentSection(blocks []types.ContentBlock) []string {
	var lines []string
	for _, block := range blocks {
		lines = append(lines, fmt.Sprintf(contentHeaderFormat, block.Path), contentRule)
		lines = append(lines, renderContentBody(block)...)
		lines = append(lines, contentRule, "")
	}
	return lines
}

func renderContentBody(block types.ContentBlock) []string {
	switch {
	case block.ReadError != "":
		return []string{fmt.Sprintf(readErrorFormat, block.ReadError)}
	case block.Type == types.NodeTypeBinary:
		return []string{fmt.Sprintf(binaryOmittedFormat, binaryDescription(block))}
	}
	return NumberLines(block.Lines)
}

func binaryDescription(block types.ContentBlock) string {
	description := humanize.IBytes(uint64(block.SizeBytes))
	if block.MimeType != "" {
		description += ", " + block.MimeType
	}
	return description
}

// NumberLines prefixes each line with its 1-based number, right-aligned to the
// width of the last line number. Empty lines carry no trailing space.
func NumberLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	width := len(strconv.Itoa(len(lines)))
	numbered := make([]string, len(lines))
	for index, line := range lines {
		if line == "" {
			numbered[index] = fmt.Sprintf(emptyNumberedFormat, width, index+1)
			continue
		}
		numbered[index] = fmt.Sprintf(numberedLineFormat, width, index+1, line)
	}
	return numbered
}

// RenderStatisticsSection renders totals and the per-extension table. The
// table is omitted when no file was counted.
func RenderStatisticsSection(summary stats.Summary) []string {
	lines := []string{
		statisticsHeader,
		statisticsUnderline,
		fmt.Sprintf(totalFilesFormat, summary.TotalFiles),
		fmt.Sprintf(totalDirectoriesFmt, summary.TotalDirectories),
		fmt.Sprintf(totalLinesFormat, summary.TotalLines),
	}
	if summary.TotalTokens > 0 {
		lines = append(lines, fmt.Sprintf(totalTokensFormat, summary.TokenModel, summary.TotalTokens))
	}
	if len(summary.Extensions) == 0 {
		return lines
	}
	lines = append(lines, "", fileTypesHeader)
	for _, bucket := range summary.Extensions {
		lines = append(lines, fmt.Sprintf(extensionBucketFormat, bucket.Label(), bucket.Files, bucket.Lines))
	}
	return lines
}
