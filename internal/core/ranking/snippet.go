package ranking

import "strings"

// Snippet window sizes, in runes.
const (
	SnippetBefore   = 90
	SnippetAfter    = 140
	SnippetFallback = 220

	ellipsis = "..."

	minQuestionAnchorLen = 4
	minTokenAnchorLen    = 3
)

// Anchors returns the terms tried when locating evidence, in order:
// the first normalized question word of four or more characters, then
// every token of three or more.
func Anchors(question string, tokens []string) []string {
	var anchors []string
	seen := make(map[string]struct{})
	add := func(term string) {
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		anchors = append(anchors, term)
	}

	for _, w := range strings.Fields(Normalize(question)) {
		if len(w) >= minQuestionAnchorLen {
			add(w)
			break
		}
	}
	for _, tok := range tokens {
		if len(tok) >= minTokenAnchorLen {
			add(tok)
		}
	}
	return anchors
}

// BuildSnippet cuts an evidence window out of source around the first
// anchor found. It returns false when source has no visible text.
// When no anchor is present the opening of source is returned.
func BuildSnippet(source, question string, tokens []string) (string, bool) {
	collapsed := strings.Join(strings.Fields(source), " ")
	if collapsed == "" {
		return "", false
	}

	text := []rune(collapsed)
	folded := foldRunes(text)

	for _, anchor := range Anchors(question, tokens) {
		pos := runeIndex(folded, []rune(anchor))
		if pos < 0 {
			continue
		}
		start := max(0, pos-SnippetBefore)
		end := min(len(text), pos+SnippetAfter)
		return window(text, start, end), true
	}

	// Without an anchor the snippet is the plain head of the text.
	return string(text[:min(len(text), SnippetFallback)]), true
}

func window(text []rune, start, end int) string {
	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(text[start:end]))
	if end < len(text) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// runeIndex is strings.Index over rune slices.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
