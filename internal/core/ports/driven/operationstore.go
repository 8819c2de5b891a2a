package driven

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// OperationStore persists operations and their documents.
// Backed by SQLite for metadata storage; file bytes live in a BlobStore.
type OperationStore interface {
	// CreateOperation stores an operation together with its documents.
	CreateOperation(ctx context.Context, op *domain.Operation) error

	// GetOperation retrieves an operation with its documents, newest first.
	GetOperation(ctx context.Context, id string) (*domain.Operation, error)

	// ListOperations returns the most recent operations with their documents.
	ListOperations(ctx context.Context, limit int) ([]domain.Operation, error)

	// DeleteOperation removes an operation and all of its documents.
	DeleteOperation(ctx context.Context, id string) error

	// UpdateSummary replaces the AI summary of an operation.
	UpdateSummary(ctx context.Context, id, summary string) error

	// GetDocument retrieves a single document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// SaveExtraction stores the extraction result of a document.
	SaveExtraction(ctx context.Context, documentID string, result *domain.ExtractionResult) error

	// LoadCandidates returns the bounded search universe: operations newest
	// first, each with its documents newest first, text and fields truncated.
	// An unknown OperationID yields an empty list.
	LoadCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.CandidateOperation, error)
}
