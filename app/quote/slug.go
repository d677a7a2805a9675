package quote

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a display name into a URL-safe slug: diacritics folded,
// lowercased, runs of non-alphanumerics collapsed into single hyphens.
func Slugify(name string) string {
	// Decompose and drop combining marks so "Café" becomes "cafe"
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	name = strings.ToLower(name)

	var b strings.Builder
	pendingHyphen := false
	for _, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
