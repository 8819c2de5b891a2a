package ranking

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newFolder strips combining marks. Transformers carry state, so each call gets its own.
func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lower-cases text, strips diacritics, replaces every rune
// outside [a-z0-9 .-] with a space and collapses whitespace.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	folded, _, err := transform.String(newFolder(), lower)
	if err != nil {
		folded = lower
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isKept(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isKept(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-':
		return true
	}
	return false
}

// foldRune maps one rune to its lower-case base letter so positions in
// the folded text line up with the raw text.
func foldRune(r rune) rune {
	r = unicode.ToLower(r)
	if r < unicode.MaxASCII {
		return r
	}
	folded, _, err := transform.String(newFolder(), string(r))
	if err != nil {
		return r
	}
	out := []rune(folded)
	if len(out) != 1 {
		return r
	}
	return out[0]
}

// foldRunes folds text rune-for-rune.
func foldRunes(text []rune) []rune {
	out := make([]rune, len(text))
	for i, r := range text {
		out[i] = foldRune(r)
	}
	return out
}
