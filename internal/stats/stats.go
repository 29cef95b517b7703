// Package stats accumulates file, directory, line and extension totals for a run.
package stats

import (
	"path"
	"sort"
	"strings"
)

// NoExtensionLabel is displayed for the bucket of extensionless files.
const NoExtensionLabel = "[no extension]"

const extensionSeparator = "."

// ExtensionBucket holds the totals of one extension. Extension is empty for
// extensionless files.
type ExtensionBucket struct {
	Extension string `json:"extension"`
	Files     int    `json:"files"`
	Lines     int    `json:"lines"`
}

// Label returns the extension or NoExtensionLabel for the empty bucket.
func (bucket ExtensionBucket) Label() string {
	if bucket.Extension == "" {
		return NoExtensionLabel
	}
	return bucket.Extension
}

// Statistics is a mutable accumulator owned by a single traversal.
// Every counted file has exactly one bucket, so the bucket file counts always
// sum to TotalFiles and the bucket line counts sum to TotalLines.
type Statistics struct {
	TotalFiles       int
	TotalDirectories int
	TotalLines       int
	TotalTokens      int
	TokenModel       string

	extensions map[string]*ExtensionBucket
}

// New returns an empty accumulator.
func New() *Statistics {
	return &Statistics{extensions: make(map[string]*ExtensionBucket)}
}

// AddDirectory counts one directory.
func (statistics *Statistics) AddDirectory() {
	statistics.TotalDirectories++
}

// AddTextFile counts one text file with its line count.
func (statistics *Statistics) AddTextFile(fileName string, lineCount int) {
	bucket := statistics.bucketFor(fileName)
	bucket.Files++
	bucket.Lines += lineCount
	statistics.TotalFiles++
	statistics.TotalLines += lineCount
}

// AddBinaryFile counts one binary or unreadable file; it contributes no lines.
func (statistics *Statistics) AddBinaryFile(fileName string) {
	statistics.bucketFor(fileName).Files++
	statistics.TotalFiles++
}

// AddTokens adds a token count measured with model.
func (statistics *Statistics) AddTokens(tokenCount int, model string) {
	statistics.TotalTokens += tokenCount
	if statistics.TokenModel == "" {
		statistics.TokenModel = model
	}
}

func (statistics *Statistics) bucketFor(fileName string) *ExtensionBucket {
	if statistics.extensions == nil {
		statistics.extensions = make(map[string]*ExtensionBucket)
	}
	extension := ExtensionOf(fileName)
	bucket, exists := statistics.extensions[extension]
	if !exists {
		bucket = &ExtensionBucket{Extension: extension}
		statistics.extensions[extension] = bucket
	}
	return bucket
}

// Buckets returns the extension buckets sorted ascending by extension with the
// extensionless bucket last.
func (statistics *Statistics) Buckets() []ExtensionBucket {
	buckets := make([]ExtensionBucket, 0, len(statistics.extensions))
	for _, bucket := range statistics.extensions {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(left, right int) bool {
		leftExtension, rightExtension := buckets[left].Extension, buckets[right].Extension
		if leftExtension == "" || rightExtension == "" {
			return rightExtension == "" && leftExtension != ""
		}
		return leftExtension < rightExtension
	})
	return buckets
}

// Summary is a serializable snapshot of the statistics.
type Summary struct {
	TotalFiles       int               `json:"totalFiles"`
	TotalDirectories int               `json:"totalDirectories"`
	TotalLines       int               `json:"totalLines"`
	TotalTokens      int               `json:"totalTokens,omitempty"`
	TokenModel       string            `json:"tokenModel,omitempty"`
	Extensions       []ExtensionBucket `json:"extensions"`
}

// Snapshot copies the current totals.
func (statistics *Statistics) Snapshot() Summary {
	return Summary{
		TotalFiles:       statistics.TotalFiles,
		TotalDirectories: statistics.TotalDirectories,
		TotalLines:       statistics.TotalLines,
		TotalTokens:      statistics.TotalTokens,
		TokenModel:       statistics.TokenModel,
		Extensions:       statistics.Buckets(),
	}
}

// ExtensionOf returns the lower-cased extension of fileName including the
// leading dot. Dot-files such as ".gitignore" and names ending in a bare dot
// have no extension.
func ExtensionOf(fileName string) string {
	baseName := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	separatorIndex := strings.LastIndex(baseName, extensionSeparator)
	if separatorIndex <= 0 || separatorIndex == len(baseName)-1 {
		return ""
	}
	return strings.ToLower(baseName[separatorIndex:])
}
