// Package tokenizer estimates language-model token counts for text files.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	initializeEncodingFormat = "initialize tokenizer encoding %s: %w"
)

// Encoding lookups, replaced in tests.
var (
	encodingForModel = tiktoken.EncodingForModel
	encodingByName   = tiktoken.GetEncoding
)

// NewCounter returns a tiktoken Counter for the requested model together with
// the name the counts should be reported under. Unknown models fall back to
// the cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	lowerModel := strings.ToLower(model)

	if encoding, encodingErr := encodingForModel(lowerModel); encodingErr == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: lowerModel}, lowerModel, nil
	}

	fallback, fallbackErr := encodingByName(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf(initializeEncodingFormat, defaultEncodingName, fallbackErr)
	}
	return tiktokenCounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
