package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirov/dirsum/internal/stats"
	"github.com/temirov/dirsum/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	encodeReportFormat = "encode json report: %w"
)

type jsonReport struct {
	Tree       *types.TreeNode      `json:"tree"`
	Files      []types.ContentBlock `json:"files"`
	Statistics stats.Summary        `json:"statistics"`
}

type jsonStreamRenderer struct {
	reportCollector
}

func (renderer *jsonStreamRenderer) Report() (RenderedReport, error) {
	if err := renderer.complete(); err != nil {
		return RenderedReport{}, err
	}
	files := renderer.blocks
	if files == nil {
		files = []types.ContentBlock{}
	}
	encoded, encodeErr := json.MarshalIndent(jsonReport{
		Tree:       renderer.tree,
		Files:      files,
		Statistics: *renderer.summary,
	}, indentPrefix, indentSpacer)
	if encodeErr != nil {
		return RenderedReport{}, fmt.Errorf(encodeReportFormat, encodeErr)
	}
	return RenderedReport{Format: types.FormatJSON, Lines: strings.Split(string(encoded), lineSeparator)}, nil
}
