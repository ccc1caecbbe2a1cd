package shellscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n\t  ",
			expected: "",
		},
		{
			name:     "collapses extra spaces",
			input:    "apt-get    install   jq",
			expected: "apt-get install jq",
		},
		{
			name:     "keeps pipelines",
			input:    "cat file |  grep foo",
			expected: "cat file | grep foo",
		},
		{
			name:     "strips trailing comment",
			input:    "echo hi # greeting",
			expected: "echo hi",
		},
		{
			name:     "malformed command returned as-is",
			input:    "echo 'unterminated",
			expected: "echo 'unterminated",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"rm", "-rf", "/tmp/scratch"}, Words("rm -rf /tmp/scratch"))
	assert.Equal(t, []string{"echo", "hello world"}, Words("echo 'hello world'"))
	assert.Nil(t, Words("   "))

	// Parse errors fall back to whitespace splitting.
	assert.Equal(t, []string{"echo", "'oops"}, Words("echo 'oops"))
}
