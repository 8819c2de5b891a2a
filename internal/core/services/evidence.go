package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/core/ranking"
	"github.com/custodia-labs/megafile/internal/logger"
)

// Ensure EvidenceService implements the interface.
var _ driving.EvidenceService = (*EvidenceService)(nil)

// EvidenceService finds where a question is answered inside a document.
type EvidenceService struct {
	store  driven.OperationStore
	blobs  driven.BlobStore
	reader driven.TextLayerReader

	mu     sync.RWMutex
	limits domain.HighlightLimits
}

// NewEvidenceService creates a new evidence service.
// The reader parameter is optional (can be nil); only snippets are returned then.
func NewEvidenceService(
	store driven.OperationStore,
	blobs driven.BlobStore,
	reader driven.TextLayerReader,
	limits domain.HighlightLimits,
) *EvidenceService {
	return &EvidenceService{
		store:  store,
		blobs:  blobs,
		reader: reader,
		limits: limits,
	}
}

// UpdateLimits swaps the highlight limits.
func (s *EvidenceService) UpdateLimits(limits domain.HighlightLimits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = limits
}

// Highlights returns the snippet and, for PDFs, the boxes to draw per page.
func (s *EvidenceService) Highlights(ctx context.Context, documentID, question string) (*domain.DocumentHighlights, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("highlights %s: %w", documentID, err)
	}

	q := ranking.NewQuery(question)
	result := &domain.DocumentHighlights{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		Pages:      []domain.PageHighlight{},
	}

	source := doc.Text()
	if strings.TrimSpace(source) == "" {
		source = fieldsText(domain.FieldsJSON(doc.ExtractedFields))
	}
	if snippet, ok := ranking.BuildSnippet(source, question, q.Tokens); ok {
		result.Snippet = snippet
	}

	if !doc.IsPDF() || s.reader == nil {
		return result, nil
	}

	data, err := s.blobs.Get(ctx, doc.StorageURL)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedStorage) {
			logger.Debug("No readable bytes for %s, returning snippet only", doc.ID)
			return result, nil
		}
		return nil, fmt.Errorf("highlights %s: read document: %w", documentID, err)
	}

	pages, err := s.reader.Pages(data)
	if err != nil {
		logger.Warn("Could not read text layer of %s: %v", doc.ID, err)
		return result, nil
	}

	s.mu.RLock()
	limits := s.limits
	s.mu.RUnlock()

	result.Pages = ranking.HighlightPages(pages, question, q.Tokens, limits)
	logger.Debug("Highlights for %s: %d pages", doc.ID, len(result.Pages))
	return result, nil
}
