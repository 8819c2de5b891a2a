package driving

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// OperationService manages operations and their documents.
type OperationService interface {
	// Create stores the uploads, records the operation and queues extraction.
	Create(ctx context.Context, req domain.CreateOperationRequest) (*domain.Operation, error)

	// List returns the most recent operations.
	List(ctx context.Context, limit int) ([]domain.Operation, error)

	// Get retrieves an operation with its documents.
	Get(ctx context.Context, id string) (*domain.Operation, error)

	// Delete removes an operation, its documents and their stored bytes.
	Delete(ctx context.Context, id string) error

	// Reprocess queues extraction again. Without force only pending
	// documents are processed.
	Reprocess(ctx context.Context, id string, force bool) (*domain.ExtractionJob, error)

	// Jobs lists the extraction jobs of an operation, newest first.
	Jobs(ctx context.Context, id string) ([]domain.ExtractionJob, error)

	// GetDocument retrieves one document.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DocumentContent returns the stored bytes of a document.
	DocumentContent(ctx context.Context, id string) (*domain.Document, []byte, error)
}
