package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

func seedPendingOperation(t *testing.T, store *memory.OperationStore, blobs *memory.BlobStore, files ...string) string {
	t.Helper()
	ctx := context.Background()
	op := &domain.Operation{ID: "op-1", ClientName: "Ana Rojas", ClientID: "7.654.321-0", CreatedAt: corpusTime}
	for i, name := range files {
		url, err := blobs.Put(ctx, name, domain.PDFMIMEType, []byte("contenido "+name))
		require.NoError(t, err)
		op.Documents = append(op.Documents, domain.Document{
			ID:         "doc-" + name,
			FileName:   name,
			MIMEType:   domain.PDFMIMEType,
			StorageURL: url,
			CreatedAt:  corpusTime.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, store.CreateOperation(ctx, op))
	return op.ID
}

func newTestQueue(t *testing.T, store *memory.OperationStore, blobs *memory.BlobStore, extractor *mockExtractor, settings domain.ExtractionSettings) *ExtractionQueue {
	t.Helper()
	queue, err := NewExtractionQueue(store, blobs, extractor, settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })
	return queue
}

func TestExtractionQueue_ProcessesPendingDocuments(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	opID := seedPendingOperation(t, store, blobs, "a.pdf", "b.pdf")
	queue := newTestQueue(t, store, blobs, &mockExtractor{}, domain.ExtractionSettings{Workers: 2})

	job, err := queue.Submit(opID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateQueued, job.State)
	queue.Wait()

	done, err := queue.Job(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, done.State)
	assert.Equal(t, 2, done.Processed)
	assert.Zero(t, done.Failed)
	assert.False(t, done.StartedAt.IsZero())
	assert.False(t, done.FinishedAt.Before(done.StartedAt))

	op, err := store.GetOperation(context.Background(), opID)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf: {\"tipo_documento\":\"a\"}\nb.pdf: {\"tipo_documento\":\"b\"}", op.AISummary)
	assert.Equal(t, "contenido b.pdf", op.Documents[0].Text())
}

func TestExtractionQueue_FailedDocumentMarksJobFailed(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	opID := seedPendingOperation(t, store, blobs, "a.pdf", "roto.pdf")
	queue := newTestQueue(t, store, blobs, &mockExtractor{failOn: "roto.pdf"}, domain.ExtractionSettings{Workers: 1})

	job, err := queue.Submit(opID, false)
	require.NoError(t, err)
	queue.Wait()

	done, _ := queue.Job(job.ID)
	assert.Equal(t, domain.JobStateFailed, done.State)
	assert.Equal(t, 1, done.Processed)
	assert.Equal(t, 1, done.Failed)
	assert.Contains(t, done.Error, "1 of 2 documents failed")

	// The failed document stays pending and is listed with {} in the summary.
	doc, _ := store.GetDocument(context.Background(), "doc-roto.pdf")
	assert.True(t, doc.IsPending())
	op, _ := store.GetOperation(context.Background(), opID)
	assert.Contains(t, op.AISummary, "roto.pdf: {}")
}

func TestExtractionQueue_UnknownOperation(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	queue := newTestQueue(t, store, blobs, &mockExtractor{}, domain.ExtractionSettings{})

	job, err := queue.Submit("missing", false)
	require.NoError(t, err)
	queue.Wait()

	done, _ := queue.Job(job.ID)
	assert.Equal(t, domain.JobStateFailed, done.State)
	assert.Contains(t, done.Error, domain.ErrNotFound.Error())
}

func TestExtractionQueue_UnreadableBlob(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.CreateOperation(ctx, &domain.Operation{
		ID:        "op-1",
		CreatedAt: corpusTime,
		Documents: []domain.Document{{ID: "doc-1", FileName: "x.pdf", StorageURL: "ftp://nowhere/x.pdf"}},
	}))
	extractor := &mockExtractor{}
	queue := newTestQueue(t, store, blobs, extractor, domain.ExtractionSettings{})

	job, err := queue.Submit("op-1", false)
	require.NoError(t, err)
	queue.Wait()

	done, _ := queue.Job(job.ID)
	assert.Equal(t, domain.JobStateFailed, done.State)
	assert.Equal(t, 0, extractor.callCount())
}

func TestExtractionQueue_RateLimited(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	opID := seedPendingOperation(t, store, blobs, "a.pdf", "b.pdf", "c.pdf")
	queue := newTestQueue(t, store, blobs, &mockExtractor{}, domain.ExtractionSettings{Workers: 3, RatePerSecond: 20, Burst: 1})

	start := time.Now()
	_, err := queue.Submit(opID, false)
	require.NoError(t, err)
	queue.Wait()

	// Three calls at 20/s with a burst of one need at least two intervals.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestExtractionQueue_Closed(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	queue, err := NewExtractionQueue(store, blobs, &mockExtractor{}, domain.ExtractionSettings{})
	require.NoError(t, err)

	require.NoError(t, queue.Close())
	require.NoError(t, queue.Close())

	_, err = queue.Submit("op-1", false)
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestExtractionQueue_JobNotFound(t *testing.T) {
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()
	queue := newTestQueue(t, store, blobs, &mockExtractor{}, domain.ExtractionSettings{})

	_, err := queue.Job("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, queue.Jobs("op-1"))
}

func TestOperationSummary(t *testing.T) {
	assert.Equal(t, domain.SummaryUnavailable, OperationSummary(nil))

	docs := []domain.Document{
		{FileName: "b.pdf", CreatedAt: corpusTime.Add(time.Minute), ExtractedFields: map[string]any{"monto": 10}},
		{FileName: "a.pdf", CreatedAt: corpusTime},
	}
	assert.Equal(t, "a.pdf: {}\nb.pdf: {\"monto\":10}", OperationSummary(docs))
}
