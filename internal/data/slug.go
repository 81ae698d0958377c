package data

import (
	"strings"
	"unicode"
)

// Slugify converts a title or name to a URL-safe slug. Letters outside ASCII are
// kept so non-Latin names still get a readable slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "no-slug"
	}
	return slug
}
