package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes to NFD and drops combining marks, so "envío"
// becomes "envio" and "ñ" becomes "n".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes raw user text for matching: accent-stripped,
// lowercased, punctuation replaced by spaces, whitespace collapsed, trimmed.
// Total and idempotent; any input yields a valid (possibly empty) result.
func Normalize(text string) string {
	stripped, _, err := transform.String(accentStripper, text)
	if err != nil {
		// Malformed UTF-8 still normalizes; the transform output up to the
		// error point is unusable, so fall back to the raw input.
		stripped = text
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	b.Grow(len(stripped))
	space := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Tokenize splits normalized text into a set of words. Duplicates collapse.
func Tokenize(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}
