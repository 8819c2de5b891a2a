package mcp

import (
	"context"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
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

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAssistantService) Ask(_ context.Context, _ domain.SearchRequest) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockEvidenceService is a mock implementation of driving.EvidenceService.
type mockEvidenceService struct {
	highlights *domain.DocumentHighlights
	err        error
}

func (m *mockEvidenceService) Highlights(_ context.Context, _, _ string) (*domain.DocumentHighlights, error) {
	return m.highlights, m.err
}

// mockOperationService is a mock implementation of driving.OperationService.
type mockOperationService struct {
	operations []domain.Operation
	documents  map[string]*domain.Document
	err        error
}

func (m *mockOperationService) Create(_ context.Context, _ domain.CreateOperationRequest) (*domain.Operation, error) {
	return nil, m.err
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

func (m *mockOperationService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockOperationService) Reprocess(_ context.Context, _ string, _ bool) (*domain.ExtractionJob, error) {
	return nil, m.err
}

func (m *mockOperationService) Jobs(_ context.Context, _ string) ([]domain.ExtractionJob, error) {
	return nil, m.err
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

func (m *mockOperationService) DocumentContent(_ context.Context, _ string) (*domain.Document, []byte, error) {
	return nil, nil, m.err
}
