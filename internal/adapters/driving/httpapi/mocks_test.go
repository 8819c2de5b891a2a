package httpapi

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

type mockSearchService struct {
	result  *domain.SearchResult
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{Context: domain.NoDocumentsContext}, nil
	}
	return m.result, nil
}

type mockAssistantService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAssistantService) Ask(_ context.Context, _ domain.SearchRequest) (*domain.Answer, error) {
	return m.answer, m.err
}

type mockEvidenceService struct {
	highlights *domain.DocumentHighlights
	err        error
}

func (m *mockEvidenceService) Highlights(_ context.Context, _, _ string) (*domain.DocumentHighlights, error) {
	return m.highlights, m.err
}

type mockOperationService struct {
	operations []domain.Operation
	documents  map[string]*domain.Document
	content    []byte
	created    *domain.CreateOperationRequest
	deleted    string
	force      bool
	jobs       []domain.ExtractionJob
	err        error
}

func (m *mockOperationService) Create(_ context.Context, req domain.CreateOperationRequest) (*domain.Operation, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &req
	op := &domain.Operation{ID: "op-new", ClientName: req.ClientName, ClientID: req.ClientID}
	for i, u := range req.Uploads {
		op.Documents = append(op.Documents, domain.Document{
			ID:           "doc-" + string(rune('a'+i)),
			OperationID:  op.ID,
			FileName:     u.FileName,
			MIMEType:     u.MIMEType,
			ThumbnailURL: u.Thumbnail,
		})
	}
	return op, nil
}

func (m *mockOperationService) List(_ context.Context, _ int) ([]domain.Operation, error) {
	return m.operations, m.err
}

func (m *mockOperationService) Get(_ context.Context, id string) (*domain.Operation, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.operations {
		if m.operations[i].ID == id {
			return &m.operations[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockOperationService) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.deleted = id
	return nil
}

func (m *mockOperationService) Reprocess(ctx context.Context, id string, force bool) (*domain.ExtractionJob, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	m.force = force
	return &domain.ExtractionJob{ID: "job-1", OperationID: id, State: domain.JobStateQueued, Force: force}, nil
}

func (m *mockOperationService) Jobs(_ context.Context, _ string) ([]domain.ExtractionJob, error) {
	return m.jobs, m.err
}

func (m *mockOperationService) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if doc, ok := m.documents[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockOperationService) DocumentContent(ctx context.Context, id string) (*domain.Document, []byte, error) {
	doc, err := m.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, m.content, nil
}
