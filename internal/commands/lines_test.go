package commands_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/dirsum/internal/commands"
)

func TestSplitLines(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected []string
	}{
		{name: "empty", content: "", expected: nil},
		{name: "single newline", content: "\n", expected: []string{""}},
		{name: "trailing newline", content: "hello\nworld\n", expected: []string{"hello", "world"}},
		{name: "unterminated final line", content: "hello\nworld", expected: []string{"hello", "world"}},
		{name: "crlf", content: "a\r\nb\r\n", expected: []string{"a", "b"}},
		{name: "blank lines kept", content: "a\n\n\nb\n", expected: []string{"a", "", "", "b"}},
		{name: "only one trailing newline dropped", content: "a\n\n", expected: []string{"a", ""}},
	}
	for _, testCase := range testCases {
		if actual := commands.SplitLines([]byte(testCase.content)); !reflect.DeepEqual(actual, testCase.expected) {
			testingHandle.Errorf("%s: expected %q, got %q", testCase.name, testCase.expected, actual)
		}
	}
}

func TestSplitLinesRoundTrip(testingHandle *testing.T) {
	for _, content := range []string{"x\ny\nz\n", "one\ntwo", "\n\n", "solo\n"} {
		lines := commands.SplitLines([]byte(content))
		rebuilt := strings.Join(lines, "\n")
		if strings.HasSuffix(content, "\n") {
			rebuilt += "\n"
		}
		if rebuilt != content {
			testingHandle.Errorf("round trip of %q produced %q", content, rebuilt)
		}
	}
}
