// Package analysis turns free text into the normalized tokens and n-gram
// features shared by the glossary vector space and incoming queries.
package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

// parenthetical matches a "(...)" span. A ")" closes the span opened by the
// first unmatched "(" before it; spans do not nest.
var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// Normalize removes parenthesized spans, drops everything that is not an ASCII
// letter or whitespace, lowercases, and collapses whitespace. The result may be
// empty. Normalize is idempotent.
func Normalize(text string) string {
	text = parenthetical.ReplaceAllString(text, "")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the words of the normalized text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}
