package commands

import "strings"

const (
	lineFeed       = "\n"
	carriageReturn = "\r"
)

// SplitLines splits text content into display lines. A single trailing line
// feed does not start an extra line, a final unterminated line is kept and a
// trailing carriage return is removed from each line. Empty content has no lines.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(content), lineFeed)
	lines := strings.Split(text, lineFeed)
	for index, line := range lines {
		lines[index] = strings.TrimSuffix(line, carriageReturn)
	}
	return lines
}
