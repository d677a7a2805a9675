package quote

import (
	"strings"
)

var punctuationReplacer = strings.NewReplacer(
	".", "",
	",", "",
	`"`, "",
	"'", "",
	"!", "",
	"?", "",
)

// Normalize prepares quote text for duplicate comparison: lowercase, strip
// common punctuation, trim. Used only for equality checks, never persisted.
func Normalize(text string) string {
	return strings.TrimSpace(punctuationReplacer.Replace(strings.ToLower(text)))
}

// NormalizeAuthor lowercases and trims an author name for duplicate
// comparison. Author names keep their punctuation.
func NormalizeAuthor(author string) string {
	return strings.TrimSpace(strings.ToLower(author))
}
