package tokenizer

import (
	"errors"
	"unicode/utf8"
)

var (
	errNilCounter  = errors.New("nil tokenizer counter")
	errNilEncoding = errors.New("nil tiktoken encoder")
)

// CountResult captures the outcome of counting a byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data. Data that is not valid UTF-8 is
// reported as not counted rather than as an error.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if !utf8.Valid(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, countErr := counter.CountString(string(data))
	if countErr != nil {
		return CountResult{}, countErr
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
