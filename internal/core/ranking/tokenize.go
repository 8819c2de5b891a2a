package ranking

import (
	"strings"
	"unicode"
)

// MinNumberGroupLength is the shortest digit run treated as an identifier.
const MinNumberGroupLength = 6

const minTokenLength = 2

var stopwords = map[string]struct{}{
	"de": {}, "la": {}, "el": {}, "los": {}, "las": {}, "y": {}, "o": {}, "a": {},
	"en": {}, "del": {}, "al": {}, "por": {}, "para": {}, "con": {}, "que": {},
	"un": {}, "una": {}, "se": {}, "me": {}, "mi": {},
	"quiero": {}, "mostrar": {}, "busca": {}, "buscar": {},
}

// IsStopword reports whether a normalized word carries no search signal.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// Tokenize returns the distinct search tokens of text in first-seen order.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return []string{}
	}

	words := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < minTokenLength || IsStopword(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}

// DigitsOnly keeps the ASCII digits of text.
func DigitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NumberGroups returns the distinct digit projections of the whitespace
// separated words of text that are long enough to be identifiers.
// "RUT 12.345.678-9" yields ["123456789"].
func NumberGroups(text string) []string {
	var groups []string
	seen := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(text, unicode.IsSpace) {
		d := DigitsOnly(w)
		if len(d) < MinNumberGroupLength {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		groups = append(groups, d)
	}
	return groups
}

// digitProjection is the per-word digit content of text, space separated,
// so a digit group never matches across word boundaries.
func digitProjection(text string) string {
	words := strings.Fields(text)
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if d := DigitsOnly(w); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " ")
}
