package tokenizer

import (
	"errors"
	"os"
	"testing"

	"github.com/pkoukk/tiktoken-go"
)

const networkTestsEnvironmentKey = "DIRSUM_TOKENIZER_NETWORK_TESTS"

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountBytesText(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte("hello"))
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted {
		t.Fatalf("expected counted result")
	}
	if result.Tokens != len([]rune("hello")) {
		t.Fatalf("expected %d tokens, got %d", len([]rune("hello")), result.Tokens)
	}
}

func TestCountBytesInvalidUTF8(t *testing.T) {
	result, err := CountBytes(testCounter{}, []byte{0xff, 0xfe})
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if result.Counted {
		t.Fatalf("expected invalid UTF-8 to be skipped")
	}
}

func TestCountBytesNilCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestNilEncodingReturnsError(t *testing.T) {
	if _, err := (tiktokenCounter{}).CountString("x"); err == nil {
		t.Fatalf("expected error for nil encoding")
	}
}

// tiktoken downloads its BPE tables on first use.
func TestNewCounterDefault(t *testing.T) {
	if os.Getenv(networkTestsEnvironmentKey) == "" {
		t.Skipf("set %s to run tokenizer tests that download encodings", networkTestsEnvironmentKey)
	}
	counter, model, err := NewCounter(Config{})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if model != DefaultModel {
		t.Fatalf("expected model %s, got %q", DefaultModel, model)
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}

func TestNewCounterReportsNormalizedModelName(t *testing.T) {
	originalForModel, originalByName := encodingForModel, encodingByName
	t.Cleanup(func() {
		encodingForModel, encodingByName = originalForModel, originalByName
	})
	encodingForModel = func(model string) (*tiktoken.Tiktoken, error) {
		if model != "gpt-4o" {
			return nil, errors.New("unknown model")
		}
		return &tiktoken.Tiktoken{}, nil
	}
	encodingByName = func(string) (*tiktoken.Tiktoken, error) {
		return &tiktoken.Tiktoken{}, nil
	}

	testCases := []struct {
		name         string
		model        string
		expectedName string
	}{
		{name: "mixed_case_known_model", model: " GPT-4o ", expectedName: "gpt-4o"},
		{name: "unknown_model_falls_back", model: "custom", expectedName: "cl100k_base"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			counter, reportedName, err := NewCounter(Config{Model: testCase.model})
			if err != nil {
				t.Fatalf("NewCounter error: %v", err)
			}
			if reportedName != testCase.expectedName || counter.Name() != testCase.expectedName {
				t.Fatalf("expected %q, got reported %q and counter %q", testCase.expectedName, reportedName, counter.Name())
			}
		})
	}
}
