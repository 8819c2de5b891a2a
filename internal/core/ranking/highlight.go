package ranking

import (
	"strings"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// HighlightPages locates evidence on a PDF text layer. Every word whose
// normalized text contains an anchor term gets a box. Pages without a box
// are skipped; limits cap boxes per page and pages per document.
func HighlightPages(pages []domain.PageText, question string, tokens []string, limits domain.HighlightLimits) []domain.PageHighlight {
	anchors := Anchors(question, tokens)
	if len(anchors) == 0 {
		return []domain.PageHighlight{}
	}

	out := []domain.PageHighlight{}
	for _, page := range pages {
		if limits.MaxPages > 0 && len(out) >= limits.MaxPages {
			break
		}

		var boxes []domain.Box
		words := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			words = append(words, item.Text)
			if limits.MaxBoxesPerPage > 0 && len(boxes) >= limits.MaxBoxesPerPage {
				continue
			}
			if containsAny(Normalize(item.Text), anchors) {
				boxes = append(boxes, item.Box)
			}
		}
		if len(boxes) == 0 {
			continue
		}

		snippet, _ := BuildSnippet(strings.Join(words, " "), question, tokens)
		out = append(out, domain.PageHighlight{
			Page:    page.Number,
			Snippet: snippet,
			Boxes:   boxes,
		})
	}
	return out
}

func containsAny(normalized string, terms []string) bool {
	if normalized == "" {
		return false
	}
	for _, t := range terms {
		if strings.Contains(normalized, t) {
			return true
		}
	}
	return false
}
