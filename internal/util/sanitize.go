package util

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizePolicy strips all HTML elements and attributes. Message text is
// plain text; anything resembling markup is hostile input.
var sanitizePolicy = bluemonday.StrictPolicy()

// SanitizeText neutralizes markup and script content in message text. It is
// applied both before transmission and before local display, so the same
// input always yields the same stored text.
func SanitizeText(s string) string {
	return strings.TrimSpace(sanitizePolicy.Sanitize(s))
}
