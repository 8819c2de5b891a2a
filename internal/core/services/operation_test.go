package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// mockExtractor returns the uploaded bytes as text and fails on request.
type mockExtractor struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (m *mockExtractor) Extract(_ context.Context, doc *domain.Document, data []byte) (*domain.ExtractionResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, doc.FileName)
	m.mu.Unlock()

	if m.failOn != "" && doc.FileName == m.failOn {
		return nil, errors.New("unreadable document")
	}
	return &domain.ExtractionResult{
		Text:   string(data),
		Fields: map[string]any{"tipo_documento": strings.TrimSuffix(doc.FileName, ".pdf")},
	}, nil
}

func (m *mockExtractor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// failingBlobStore rejects every write.
type failingBlobStore struct {
	*memory.BlobStore
}

func (f *failingBlobStore) Put(_ context.Context, _, _ string, _ []byte) (string, error) {
	return "", assert.AnError
}

type operationFixture struct {
	service   *OperationService
	store     *memory.OperationStore
	blobs     *memory.BlobStore
	extractor *mockExtractor
	queue     *ExtractionQueue
}

func newOperationFixture(t *testing.T) *operationFixture {
	t.Helper()
	store := memory.NewOperationStore()
	blobs := memory.NewBlobStore()
	extractor := &mockExtractor{}

	settings := domain.DefaultSettings().Extraction
	settings.RatePerSecond = 0
	queue, err := NewExtractionQueue(store, blobs, extractor, settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })

	return &operationFixture{
		service:   NewOperationService(store, blobs, queue),
		store:     store,
		blobs:     blobs,
		extractor: extractor,
		queue:     queue,
	}
}

func sampleRequest() domain.CreateOperationRequest {
	return domain.CreateOperationRequest{
		ClientName: "  Juan Pérez ",
		ClientID:   "12.345.678-9",
		Uploads: []domain.Upload{
			{FileName: "factura.pdf", MIMEType: domain.PDFMIMEType, Data: []byte("factura 018")},
			{FileName: "cedula.jpg", MIMEType: "image/jpeg", Data: []byte("jpeg"), Thumbnail: "data:image/png;base64,AAAA"},
			{FileName: "scan.png", MIMEType: "image/png", Data: []byte("png")},
		},
	}
}

func TestOperationService_Create(t *testing.T) {
	f := newOperationFixture(t)
	ctx := context.Background()

	op, err := f.service.Create(ctx, sampleRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, op.ID)
	assert.Equal(t, "Juan Pérez", op.ClientName)
	assert.Equal(t, domain.SummaryProcessing, op.AISummary)
	require.Len(t, op.Documents, 3)
	assert.Equal(t, 3, f.blobs.Len())

	assert.Equal(t, domain.PDFPlaceholderThumbnail, op.Documents[0].ThumbnailURL)
	assert.Equal(t, "data:image/png;base64,AAAA", op.Documents[1].ThumbnailURL)
	assert.Equal(t, op.Documents[2].StorageURL, op.Documents[2].ThumbnailURL)
	assert.True(t, op.Documents[2].CreatedAt.After(op.Documents[0].CreatedAt))

	f.queue.Wait()

	stored, err := f.service.Get(ctx, op.ID)
	require.NoError(t, err)
	for _, doc := range stored.Documents {
		assert.False(t, doc.IsPending(), doc.FileName)
	}
	assert.Contains(t, stored.AISummary, `factura.pdf: {"tipo_documento":"factura"}`)
	assert.Equal(t, "factura.pdf", strings.SplitN(stored.AISummary, ":", 2)[0], "summary lists oldest upload first")

	jobs, err := f.service.Jobs(ctx, op.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobStateDone, jobs[0].State)
	assert.Equal(t, 3, jobs[0].Processed)
}

func TestOperationService_Create_Invalid(t *testing.T) {
	f := newOperationFixture(t)

	tests := []struct {
		name   string
		mutate func(*domain.CreateOperationRequest)
	}{
		{"no client name", func(r *domain.CreateOperationRequest) { r.ClientName = " " }},
		{"no client id", func(r *domain.CreateOperationRequest) { r.ClientID = "" }},
		{"no uploads", func(r *domain.CreateOperationRequest) { r.Uploads = nil }},
		{"unnamed upload", func(r *domain.CreateOperationRequest) { r.Uploads[0].FileName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			tt.mutate(&req)

			_, err := f.service.Create(context.Background(), req)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, f.blobs.Len())
}

func TestOperationService_Create_BlobFailure(t *testing.T) {
	store := memory.NewOperationStore()
	service := NewOperationService(store, &failingBlobStore{BlobStore: memory.NewBlobStore()}, nil)

	_, err := service.Create(context.Background(), sampleRequest())

	assert.ErrorIs(t, err, assert.AnError)
	ops, _ := store.ListOperations(context.Background(), 10)
	assert.Empty(t, ops)
}

func TestOperationService_Create_WithoutQueueStaysPending(t *testing.T) {
	store := memory.NewOperationStore()
	service := NewOperationService(store, memory.NewBlobStore(), nil)

	op, err := service.Create(context.Background(), sampleRequest())
	require.NoError(t, err)

	stored, _ := service.Get(context.Background(), op.ID)
	assert.Equal(t, domain.SummaryProcessing, stored.AISummary)
	assert.True(t, stored.Documents[0].IsPending())

	_, err = service.Reprocess(context.Background(), op.ID, false)
	assert.ErrorIs(t, err, domain.ErrQueueClosed)

	jobs, err := service.Jobs(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestOperationService_Delete(t *testing.T) {
	f := newOperationFixture(t)
	ctx := context.Background()
	op, err := f.service.Create(ctx, sampleRequest())
	require.NoError(t, err)
	f.queue.Wait()

	require.NoError(t, f.service.Delete(ctx, op.ID))

	_, err = f.service.Get(ctx, op.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.service.GetDocument(ctx, op.Documents[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.blobs.Len())

	assert.ErrorIs(t, f.service.Delete(ctx, op.ID), domain.ErrNotFound)
}

func TestOperationService_List(t *testing.T) {
	f := newOperationFixture(t)
	ctx := context.Background()
	first, err := f.service.Create(ctx, sampleRequest())
	require.NoError(t, err)
	second, err := f.service.Create(ctx, sampleRequest())
	require.NoError(t, err)
	f.queue.Wait()

	ops, err := f.service.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	ids := []string{ops[0].ID, ops[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestOperationService_Reprocess(t *testing.T) {
	f := newOperationFixture(t)
	ctx := context.Background()
	op, err := f.service.Create(ctx, sampleRequest())
	require.NoError(t, err)
	f.queue.Wait()
	require.Equal(t, 3, f.extractor.callCount())

	// Nothing is pending any more.
	job, err := f.service.Reprocess(ctx, op.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateQueued, job.State)
	f.queue.Wait()
	assert.Equal(t, 3, f.extractor.callCount())

	job, err = f.service.Reprocess(ctx, op.ID, true)
	require.NoError(t, err)
	assert.True(t, job.Force)
	f.queue.Wait()
	assert.Equal(t, 6, f.extractor.callCount())

	jobs, err := f.service.Jobs(ctx, op.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, job.ID, jobs[0].ID, "newest job first")
	assert.Equal(t, 0, jobs[1].Processed)

	_, err = f.service.Reprocess(ctx, "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOperationService_DocumentContent(t *testing.T) {
	f := newOperationFixture(t)
	ctx := context.Background()
	op, err := f.service.Create(ctx, sampleRequest())
	require.NoError(t, err)

	doc, data, err := f.service.DocumentContent(ctx, op.Documents[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "factura.pdf", doc.FileName)
	assert.Equal(t, []byte("factura 018"), data)

	_, _, err = f.service.DocumentContent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
