package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"script stripped", "<script>alert('x')</script>hello", "hello"},
		{"tags stripped, text kept", "<b>bold</b> move", "bold move"},
		{"img with handler stripped", `<img src=x onerror=alert(1)>hi`, "hi"},
		{"anchor stripped", `click <a href="javascript:evil()">here</a>`, "click here"},
		{"surrounding whitespace trimmed", "  hi  ", "hi"},
		{"only markup becomes empty", "<script>alert(1)</script>", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeText(tc.input))
		})
	}
}

func TestSanitizeTextStable(t *testing.T) {
	// Sending the same input twice must yield the same sanitized output,
	// and re-sanitizing already sanitized text must not change it.
	inputs := []string{
		"hello world",
		"<script>alert('x')</script>hello",
		"<b>bold</b> move",
		"multi\nline\ntext",
	}
	for _, input := range inputs {
		first := SanitizeText(input)
		assert.Equal(t, first, SanitizeText(input), "same input, same output: %q", input)
		assert.Equal(t, first, SanitizeText(first), "sanitize is stable on its own output: %q", input)
	}
}
