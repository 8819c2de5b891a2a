package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/logger"
)

// Ensure OperationService implements the interface.
var _ driving.OperationService = (*OperationService)(nil)

// uploadConcurrency bounds parallel blob writes per submission.
const uploadConcurrency = 3

// defaultListLimit applies when List is called without a limit.
const defaultListLimit = 50

// OperationService manages operations, their uploads and extraction jobs.
type OperationService struct {
	store driven.OperationStore
	blobs driven.BlobStore
	queue *ExtractionQueue

	now func() time.Time
}

// NewOperationService creates a new operation service.
// The queue parameter is optional (can be nil); operations then stay pending.
func NewOperationService(
	store driven.OperationStore,
	blobs driven.BlobStore,
	queue *ExtractionQueue,
) *OperationService {
	return &OperationService{
		store: store,
		blobs: blobs,
		queue: queue,
		now:   time.Now,
	}
}

// Create stores the uploads, records the operation and queues extraction.
func (s *OperationService) Create(ctx context.Context, req domain.CreateOperationRequest) (*domain.Operation, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("create operation: %w", err)
	}

	created := s.now()
	op := &domain.Operation{
		ID:         uuid.New().String(),
		ClientName: strings.TrimSpace(req.ClientName),
		ClientID:   strings.TrimSpace(req.ClientID),
		AISummary:  domain.SummaryProcessing,
		CreatedAt:  created,
		Documents:  make([]domain.Document, len(req.Uploads)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i := range req.Uploads {
		upload := req.Uploads[i]
		g.Go(func() error {
			mimeType := upload.MIMEType
			if mimeType == "" {
				mimeType = domain.DefaultMIMEType
			}
			url, err := s.blobs.Put(gctx, upload.FileName, mimeType, upload.Data)
			if err != nil {
				return fmt.Errorf("store %s: %w", upload.FileName, err)
			}

			thumbnail := domain.ThumbnailFor(mimeType, url)
			if strings.HasPrefix(upload.Thumbnail, "data:image/") {
				thumbnail = upload.Thumbnail
			}

			op.Documents[i] = domain.Document{
				ID:           uuid.New().String(),
				OperationID:  op.ID,
				FileName:     upload.FileName,
				MIMEType:     mimeType,
				StorageURL:   url,
				ThumbnailURL: thumbnail,
				// Upload order is kept: later files are newer.
				CreatedAt: created.Add(time.Duration(i) * time.Millisecond),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardBlobs(op.Documents)
		return nil, fmt.Errorf("create operation: %w", err)
	}

	if err := s.store.CreateOperation(ctx, op); err != nil {
		s.discardBlobs(op.Documents)
		return nil, fmt.Errorf("create operation: %w", err)
	}
	logger.Info("Created operation %s with %d documents", op.ID, len(op.Documents))

	if s.queue != nil {
		if _, err := s.queue.Submit(op.ID, false); err != nil {
			logger.Warn("Could not queue extraction for %s: %v", op.ID, err)
		}
	}

	return op, nil
}

// List returns the most recent operations.
func (s *OperationService) List(ctx context.Context, limit int) ([]domain.Operation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	ops, err := s.store.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	return ops, nil
}

// Get retrieves an operation with its documents.
func (s *OperationService) Get(ctx context.Context, id string) (*domain.Operation, error) {
	op, err := s.store.GetOperation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get operation %s: %w", id, err)
	}
	return op, nil
}

// Delete removes an operation, its documents and their stored bytes.
func (s *OperationService) Delete(ctx context.Context, id string) error {
	op, err := s.store.GetOperation(ctx, id)
	if err != nil {
		return fmt.Errorf("delete operation %s: %w", id, err)
	}
	if err := s.store.DeleteOperation(ctx, id); err != nil {
		return fmt.Errorf("delete operation %s: %w", id, err)
	}
	s.discardBlobs(op.Documents)
	logger.Info("Deleted operation %s", id)
	return nil
}

// Reprocess queues extraction again for an existing operation.
func (s *OperationService) Reprocess(ctx context.Context, id string, force bool) (*domain.ExtractionJob, error) {
	if s.queue == nil {
		return nil, fmt.Errorf("reprocess %s: %w", id, domain.ErrQueueClosed)
	}
	if _, err := s.store.GetOperation(ctx, id); err != nil {
		return nil, fmt.Errorf("reprocess %s: %w", id, err)
	}
	job, err := s.queue.Submit(id, force)
	if err != nil {
		return nil, fmt.Errorf("reprocess %s: %w", id, err)
	}
	return job, nil
}

// Jobs lists the extraction jobs of an operation, newest first.
func (s *OperationService) Jobs(ctx context.Context, id string) ([]domain.ExtractionJob, error) {
	if _, err := s.store.GetOperation(ctx, id); err != nil {
		return nil, fmt.Errorf("jobs %s: %w", id, err)
	}
	if s.queue == nil {
		return []domain.ExtractionJob{}, nil
	}
	return s.queue.Jobs(id), nil
}

// GetDocument retrieves one document.
func (s *OperationService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc, nil
}

// DocumentContent returns the stored bytes of a document.
func (s *OperationService) DocumentContent(ctx context.Context, id string) (*domain.Document, []byte, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, doc.StorageURL)
	if err != nil {
		return doc, nil, fmt.Errorf("read document %s: %w", id, err)
	}
	return doc, data, nil
}

// discardBlobs removes stored bytes on a best-effort basis.
func (s *OperationService) discardBlobs(docs []domain.Document) {
	ctx := context.Background()
	for i := range docs {
		if docs[i].StorageURL == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, docs[i].StorageURL); err != nil && !errors.Is(err, domain.ErrUnsupportedStorage) {
			logger.Warn("Could not delete blob of document %s: %v", docs[i].ID, err)
		}
	}
}
