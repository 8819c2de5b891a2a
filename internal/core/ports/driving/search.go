package driving

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// SearchService ranks documents for a question.
type SearchService interface {
	// Search returns up to eight relevant matches and the prompt context
	// built from them. A question without signal yields no matches and
	// domain.NoDocumentsContext; that is not an error.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
}

// AssistantService answers questions over the document corpus.
type AssistantService interface {
	// Ask searches, then answers from the retrieved context. Generator
	// failures and timeouts degrade to a fallback answer, not an error.
	Ask(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error)
}

// EvidenceService locates the evidence of a question inside one document.
type EvidenceService interface {
	// Highlights returns the snippet and, for PDFs, the boxes to draw per page.
	Highlights(ctx context.Context, documentID, question string) (*domain.DocumentHighlights, error)
}
