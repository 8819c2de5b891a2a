package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/logger"
)

// ExtractionQueue runs document extraction in the background.
// Jobs cover one operation each; their documents are fanned out to a
// bounded worker pool and extractor calls are paced by a rate limiter.
type ExtractionQueue struct {
	store     driven.OperationStore
	blobs     driven.BlobStore
	extractor driven.DocumentExtractor

	pool    *ants.Pool
	limiter *rate.Limiter

	// ctx outlives the request that submitted a job.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	jobs   map[string]*domain.ExtractionJob
	closed bool
	wg     sync.WaitGroup

	now func() time.Time
}

// NewExtractionQueue creates a queue with settings.Workers workers.
func NewExtractionQueue(
	store driven.OperationStore,
	blobs driven.BlobStore,
	extractor driven.DocumentExtractor,
	settings domain.ExtractionSettings,
) (*ExtractionQueue, error) {
	workers := settings.Workers
	if workers <= 0 {
		workers = domain.DefaultSettings().Extraction.Workers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create extraction pool: %w", err)
	}

	var limiter *rate.Limiter
	if settings.RatePerSecond > 0 {
		burst := settings.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(settings.RatePerSecond), burst)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ExtractionQueue{
		store:     store,
		blobs:     blobs,
		extractor: extractor,
		pool:      pool,
		limiter:   limiter,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]*domain.ExtractionJob),
		now:       time.Now,
	}, nil
}

// Submit queues extraction for an operation and returns immediately.
// Without force only documents that were never extracted are processed.
func (q *ExtractionQueue) Submit(operationID string, force bool) (*domain.ExtractionJob, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, domain.ErrQueueClosed
	}

	job := &domain.ExtractionJob{
		ID:          uuid.New().String(),
		OperationID: operationID,
		State:       domain.JobStateQueued,
		Force:       force,
		QueuedAt:    q.now(),
	}
	q.jobs[job.ID] = job
	snapshot := *job
	q.wg.Add(1)
	q.mu.Unlock()

	logger.Debug("Queued extraction job %s for operation %s (force=%v)", job.ID, operationID, force)

	go func() {
		defer q.wg.Done()
		q.run(job.ID)
	}()

	return &snapshot, nil
}

// Job returns a snapshot of a job.
func (q *ExtractionQueue) Job(id string) (*domain.ExtractionJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	snapshot := *job
	return &snapshot, nil
}

// Jobs returns snapshots of the jobs of an operation, newest first.
func (q *ExtractionQueue) Jobs(operationID string) []domain.ExtractionJob {
	q.mu.RLock()
	defer q.mu.RUnlock()

	jobs := make([]domain.ExtractionJob, 0)
	for _, job := range q.jobs {
		if job.OperationID == operationID {
			jobs = append(jobs, *job)
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		if !jobs[i].QueuedAt.Equal(jobs[j].QueuedAt) {
			return jobs[i].QueuedAt.After(jobs[j].QueuedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs
}

// Wait blocks until every submitted job has finished.
func (q *ExtractionQueue) Wait() {
	q.wg.Wait()
}

// Close stops accepting jobs, waits for the running ones and releases the pool.
func (q *ExtractionQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.pool.Release()
	return nil
}

// Abort cancels in-flight extractions and closes the queue.
func (q *ExtractionQueue) Abort() error {
	q.cancel()
	return q.Close()
}

func (q *ExtractionQueue) run(jobID string) {
	ctx := q.ctx

	q.update(jobID, func(j *domain.ExtractionJob) {
		j.State = domain.JobStateRunning
		j.StartedAt = q.now()
	})
	job, _ := q.Job(jobID)

	op, err := q.store.GetOperation(ctx, job.OperationID)
	if err != nil {
		logger.Error("extraction job %s: load operation %s: %v", jobID, job.OperationID, err)
		q.finish(jobID, 0, 0, err)
		return
	}

	docs := make([]domain.Document, 0, len(op.Documents))
	for i := range op.Documents {
		if job.Force || op.Documents[i].IsPending() {
			docs = append(docs, op.Documents[i])
		}
	}
	logger.Debug("Extraction job %s: %d of %d documents to process", jobID, len(docs), len(op.Documents))

	var (
		mu        sync.Mutex
		processed int
		failed    int
		wg        sync.WaitGroup
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed++
			return
		}
		processed++
	}

	for i := range docs {
		doc := docs[i]
		wg.Add(1)
		submitErr := q.pool.Submit(func() {
			defer wg.Done()
			err := q.extractOne(ctx, &doc)
			if err != nil {
				logger.Error("extraction job %s: document %s (%s): %v", jobID, doc.ID, doc.FileName, err)
			}
			record(err)
		})
		if submitErr != nil {
			wg.Done()
			logger.Error("extraction job %s: submit document %s: %v", jobID, doc.ID, submitErr)
			record(submitErr)
		}
	}
	wg.Wait()

	if err := q.refreshSummary(ctx, op.ID); err != nil {
		logger.Error("extraction job %s: refresh summary: %v", jobID, err)
		q.finish(jobID, processed, failed, err)
		return
	}

	var jobErr error
	if failed > 0 {
		jobErr = fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	q.finish(jobID, processed, failed, jobErr)
}

func (q *ExtractionQueue) extractOne(ctx context.Context, doc *domain.Document) error {
	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	data, err := q.blobs.Get(ctx, doc.StorageURL)
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}

	result, err := q.extractor.Extract(ctx, doc, data)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if result.Fields == nil {
		result.Fields = map[string]any{}
	}

	if err := q.store.SaveExtraction(ctx, doc.ID, result); err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return nil
}

// refreshSummary rebuilds the operation summary from the stored extractions.
func (q *ExtractionQueue) refreshSummary(ctx context.Context, operationID string) error {
	op, err := q.store.GetOperation(ctx, operationID)
	if err != nil {
		return err
	}
	return q.store.UpdateSummary(ctx, operationID, OperationSummary(op.Documents))
}

// OperationSummary renders one "fileName: fields" line per document,
// oldest upload first.
func OperationSummary(docs []domain.Document) string {
	ordered := make([]domain.Document, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	lines := make([]string, 0, len(ordered))
	for i := range ordered {
		lines = append(lines, ordered[i].FileName+": "+domain.FieldsJSON(ordered[i].ExtractedFields))
	}

	summary := strings.Join(lines, "\n")
	if summary == "" {
		return domain.SummaryUnavailable
	}
	return summary
}

func (q *ExtractionQueue) update(jobID string, fn func(*domain.ExtractionJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[jobID]; ok {
		fn(job)
	}
}

func (q *ExtractionQueue) finish(jobID string, processed, failed int, err error) {
	q.update(jobID, func(j *domain.ExtractionJob) {
		j.Processed = processed
		j.Failed = failed
		j.FinishedAt = q.now()
		j.State = domain.JobStateDone
		if err != nil {
			j.State = domain.JobStateFailed
			j.Error = err.Error()
		}
	})
	logger.Info("Extraction job %s finished: %d processed, %d failed", jobID, processed, failed)
}
