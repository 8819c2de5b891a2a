package driven

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// DocumentExtractor turns an uploaded file into text and structured fields.
type DocumentExtractor interface {
	// Extract reads the document bytes and returns what could be extracted.
	// A missing LLM is not an error: Fields is then empty.
	Extract(ctx context.Context, doc *domain.Document, data []byte) (*domain.ExtractionResult, error)
}

// TextLayerReader reads the text layer of PDF files.
type TextLayerReader interface {
	// PlainText returns the text of every page, in page order.
	PlainText(data []byte) (string, error)

	// Pages returns the positioned words of each page.
	// Returns domain.ErrNotPDF when data is not a readable PDF.
	Pages(data []byte) ([]domain.PageText, error)
}
