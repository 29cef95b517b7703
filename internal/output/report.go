// Package output renders summary streams into reports and writes them to disk.
package output

import "strings"

const lineSeparator = "\n"

// RenderedReport is the fully assembled report as ordered lines.
type RenderedReport struct {
	Format string
	Lines  []string
}

// String joins the lines, terminating each with a line feed.
func (report RenderedReport) String() string {
	if len(report.Lines) == 0 {
		return ""
	}
	return strings.Join(report.Lines, lineSeparator) + lineSeparator
}

// Bytes returns String as a byte slice.
func (report RenderedReport) Bytes() []byte {
	return []byte(report.String())
}
