// Package classifier decides whether file contents are text or binary.
package classifier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"unicode/utf8"
)

const (
	// DefaultSampleSize is the number of leading bytes inspected per file.
	DefaultSampleSize = 8192
	// DefaultThreshold is the largest non-printable ratio still considered text.
	DefaultThreshold = 0.30

	openFileFormat   = "open %s: %w"
	readSampleFormat = "read sample from %s: %w"
)

// Verdict is the outcome of a classification.
type Verdict int

const (
	Text Verdict = iota
	Binary
)

func (verdict Verdict) String() string {
	if verdict == Binary {
		return "binary"
	}
	return "text"
}

// Inspection is the classification of a file plus the MIME type sniffed from
// the same sample.
type Inspection struct {
	Verdict  Verdict
	MimeType string
}

// FileClassifier classifies files on disk.
type FileClassifier interface {
	ClassifyFile(path string, info fs.FileInfo) (Inspection, error)
}

// ContentClassifier applies the NUL-byte and non-printable-ratio heuristic to
// a bounded prefix of the data. The zero value uses the package defaults.
type ContentClassifier struct {
	SampleSize int
	Threshold  float64
}

// New returns a classifier with the given sample size and threshold. Non-positive
// values select the defaults.
func New(sampleSize int, threshold float64) ContentClassifier {
	return ContentClassifier{SampleSize: sampleSize, Threshold: threshold}
}

func (classifier ContentClassifier) sampleSize() int {
	if classifier.SampleSize <= 0 {
		return DefaultSampleSize
	}
	return classifier.SampleSize
}

func (classifier ContentClassifier) threshold() float64 {
	if classifier.Threshold <= 0 {
		return DefaultThreshold
	}
	return classifier.Threshold
}

// Classify inspects at most the configured sample size of data. Empty data is
// text. Any NUL byte makes the data binary; otherwise the data is binary when
// the share of non-printable bytes is strictly greater than the threshold.
func (classifier ContentClassifier) Classify(data []byte) Verdict {
	sample := data
	if limit := classifier.sampleSize(); len(sample) > limit {
		sample = sample[:limit]
	}
	if len(sample) == 0 {
		return Text
	}

	nonPrintableCount := 0
	for index := 0; index < len(sample); {
		currentByte := sample[index]
		if currentByte == 0 {
			return Binary
		}
		if currentByte < utf8.RuneSelf {
			if !isPrintableASCII(currentByte) {
				nonPrintableCount++
			}
			index++
			continue
		}

		remaining := sample[index:]
		if !utf8.FullRune(remaining) {
			// sequence cut by the sample boundary
			break
		}
		decodedRune, runeWidth := utf8.DecodeRune(remaining)
		if decodedRune == utf8.RuneError && runeWidth == 1 {
			nonPrintableCount++
			index++
			continue
		}
		index += runeWidth
	}

	ratio := float64(nonPrintableCount) / float64(len(sample))
	if ratio > classifier.threshold() {
		return Binary
	}
	return Text
}

// ClassifyFile reads a sample from path and classifies it. info may be nil.
func (classifier ContentClassifier) ClassifyFile(path string, info fs.FileInfo) (Inspection, error) {
	sample, readErr := readSample(path, classifier.sampleSize())
	if readErr != nil {
		return Inspection{}, readErr
	}
	return Inspection{
		Verdict:  classifier.Classify(sample),
		MimeType: http.DetectContentType(sample),
	}, nil
}

func readSample(path string, sampleSize int) ([]byte, error) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf(openFileFormat, path, openErr)
	}
	defer file.Close()

	buffer := make([]byte, sampleSize)
	bytesRead, readErr := io.ReadFull(file, buffer)
	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf(readSampleFormat, path, readErr)
	}
	return buffer[:bytesRead], nil
}

func isPrintableASCII(value byte) bool {
	switch {
	case value >= 0x20 && value <= 0x7e:
		return true
	case value == '\t', value == '\n', value == '\r':
		return true
	default:
		return false
	}
}
