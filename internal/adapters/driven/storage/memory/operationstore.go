package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
)

// Ensure OperationStore implements the interface.
var _ driven.OperationStore = (*OperationStore)(nil)

// OperationStore is an in-memory implementation of driven.OperationStore.
type OperationStore struct {
	mu         sync.RWMutex
	operations map[string]domain.Operation
	documents  map[string]domain.Document
}

// NewOperationStore creates a new in-memory operation store.
func NewOperationStore() *OperationStore {
	return &OperationStore{
		operations: make(map[string]domain.Operation),
		documents:  make(map[string]domain.Document),
	}
}

// CreateOperation stores an operation together with its documents.
func (s *OperationStore) CreateOperation(_ context.Context, op *domain.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *op
	stored.Documents = nil
	s.operations[op.ID] = stored
	for i := range op.Documents {
		doc := copyDocument(&op.Documents[i])
		doc.OperationID = op.ID
		s.documents[doc.ID] = doc
	}
	return nil
}

// GetOperation retrieves an operation with its documents, newest first.
func (s *OperationStore) GetOperation(_ context.Context, id string) (*domain.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.operations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	op.Documents = s.documentsOf(id)
	return &op, nil
}

// ListOperations returns the most recent operations with their documents.
func (s *OperationStore) ListOperations(_ context.Context, limit int) ([]domain.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops := s.recentOperations(limit)
	for i := range ops {
		ops[i].Documents = s.documentsOf(ops[i].ID)
	}
	return ops, nil
}

// DeleteOperation removes an operation and all of its documents.
func (s *OperationStore) DeleteOperation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.operations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.operations, id)
	for docID, doc := range s.documents {
		if doc.OperationID == id {
			delete(s.documents, docID)
		}
	}
	return nil
}

// UpdateSummary replaces the AI summary of an operation.
func (s *OperationStore) UpdateSummary(_ context.Context, id, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.operations[id]
	if !ok {
		return domain.ErrNotFound
	}
	op.AISummary = summary
	s.operations[id] = op
	return nil
}

// GetDocument retrieves a single document by ID.
func (s *OperationStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = copyDocument(&doc)
	return &doc, nil
}

// SaveExtraction stores the extraction result of a document.
func (s *OperationStore) SaveExtraction(_ context.Context, documentID string, result *domain.ExtractionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	text := result.Text
	doc.ExtractedText = &text
	doc.ExtractedFields = maps.Clone(result.Fields)
	if doc.ExtractedFields == nil {
		doc.ExtractedFields = map[string]any{}
	}
	s.documents[documentID] = doc
	return nil
}

// LoadCandidates returns the bounded search universe.
func (s *OperationStore) LoadCandidates(_ context.Context, q domain.CandidateQuery) ([]domain.CandidateOperation, error) {
	q = q.WithDefaults()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ops []domain.Operation
	if q.OperationID != "" {
		op, ok := s.operations[q.OperationID]
		if !ok {
			return []domain.CandidateOperation{}, nil
		}
		ops = []domain.Operation{op}
	} else {
		ops = s.recentOperations(q.MaxOperations)
	}

	candidates := make([]domain.CandidateOperation, 0, len(ops))
	for i := range ops {
		docs := s.documentsOf(ops[i].ID)
		cand := domain.CandidateOperation{
			ID:         ops[i].ID,
			ClientName: ops[i].ClientName,
			ClientID:   ops[i].ClientID,
			Summary:    domain.TruncateRunes(ops[i].AISummary, q.MaxSummaryChars),
			CreatedAt:  ops[i].CreatedAt,
			Documents:  make([]domain.CandidateDocument, 0, len(docs)),
		}
		for j := range docs {
			fields := ""
			if docs[j].ExtractedFields != nil {
				fields = domain.FieldsJSON(docs[j].ExtractedFields)
			}
			cand.Documents = append(cand.Documents, domain.NewCandidateDocument(docs[j], fields, q))
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// recentOperations returns up to limit operations, newest first.
// Caller must hold the lock.
func (s *OperationStore) recentOperations(limit int) []domain.Operation {
	ops := make([]domain.Operation, 0, len(s.operations))
	for _, op := range s.operations {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if !ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].CreatedAt.After(ops[j].CreatedAt)
		}
		return ops[i].ID < ops[j].ID
	})
	if limit > 0 && len(ops) > limit {
		ops = ops[:limit]
	}
	return ops
}

// documentsOf returns copies of an operation's documents, newest first.
// Caller must hold the lock.
func (s *OperationStore) documentsOf(operationID string) []domain.Document {
	docs := make([]domain.Document, 0)
	for _, doc := range s.documents {
		if doc.OperationID == operationID {
			docs = append(docs, copyDocument(&doc))
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

func copyDocument(doc *domain.Document) domain.Document {
	out := *doc
	if doc.ExtractedText != nil {
		text := *doc.ExtractedText
		out.ExtractedText = &text
	}
	out.ExtractedFields = maps.Clone(doc.ExtractedFields)
	return out
}
