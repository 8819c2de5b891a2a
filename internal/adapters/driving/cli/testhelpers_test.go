package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// mockSearchService implements driving.SearchService for CLI tests.
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
	return m.result, nil
}

// mockAssistantService implements driving.AssistantService for CLI tests.
type mockAssistantService struct {
	answer  *domain.Answer
	err     error
	lastReq domain.SearchRequest
}

func (m *mockAssistantService) Ask(_ context.Context, req domain.SearchRequest) (*domain.Answer, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

// mockOperationService implements driving.OperationService for CLI tests.
type mockOperationService struct {
	operations []domain.Operation
	jobs       []domain.ExtractionJob
	created    *domain.CreateOperationRequest
	deleted    []string
	forced     []bool
	listLimit  int
	err        error
}

func (m *mockOperationService) Create(_ context.Context, req domain.CreateOperationRequest) (*domain.Operation, error) {
	m.created = &req
	if m.err != nil {
		return nil, m.err
	}
	op := domain.Operation{ID: "op-new", ClientName: req.ClientName, ClientID: req.ClientID, CreatedAt: time.Now()}
	for i, u := range req.Uploads {
		op.Documents = append(op.Documents, domain.Document{
			ID: "doc-new-" + string(rune('a'+i)), OperationID: op.ID, FileName: u.FileName, MIMEType: u.MIMEType,
		})
	}
	return &op, nil
}

func (m *mockOperationService) List(_ context.Context, limit int) ([]domain.Operation, error) {
	m.listLimit = limit
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

func (m *mockOperationService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockOperationService) Reprocess(_ context.Context, id string, force bool) (*domain.ExtractionJob, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.forced = append(m.forced, force)
	return &domain.ExtractionJob{ID: "job-1", OperationID: id, State: domain.JobStateQueued, Force: force}, nil
}

func (m *mockOperationService) Jobs(context.Context, string) ([]domain.ExtractionJob, error) {
	return m.jobs, m.err
}

func (m *mockOperationService) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.operations {
		for j := range m.operations[i].Documents {
			if m.operations[i].Documents[j].ID == id {
				return &m.operations[i].Documents[j], nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockOperationService) DocumentContent(ctx context.Context, id string) (*domain.Document, []byte, error) {
	doc, err := m.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, []byte("%PDF-1.4"), nil
}

// mockSettingsService implements driving.SettingsService for CLI tests.
type mockSettingsService struct {
	settings    domain.Settings
	llmProvider domain.AIProvider
	llmModel    string
	llmKey      string
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider, m.llmModel, m.llmKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetDefaultSearchMode(mode domain.SearchMode) error {
	m.settings.Search.DefaultMode = mode
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.validateErr
}

// mockActionService implements driving.ResultActionService for CLI tests.
type mockActionService struct {
	opened []string
	err    error
}

func (m *mockActionService) CopyToClipboard(context.Context, string) error {
	return m.err
}

func (m *mockActionService) OpenDocument(_ context.Context, match *domain.PublicMatch) error {
	m.opened = append(m.opened, match.DocumentID)
	return m.err
}

// testServices exposes the installed mocks.
type testServices struct {
	search    *mockSearchService
	assistant *mockAssistantService
	operation *mockOperationService
	settings  *mockSettingsService
	actions   *mockActionService
}

func testOperations() []domain.Operation {
	text := "FACTURA N° 018 Total $18.500"
	return []domain.Operation{
		{
			ID:         "op-1",
			ClientName: "Ana Pérez",
			ClientID:   "12.345.678-9",
			AISummary:  "Factura de servicios.",
			CreatedAt:  time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			Documents: []domain.Document{
				{
					ID:              "doc-1",
					OperationID:     "op-1",
					FileName:        "factura.pdf",
					MIMEType:        domain.PDFMIMEType,
					ExtractedText:   &text,
					ExtractedFields: map[string]any{"tipo_documento": "Factura", "monto_total": 18500},
				},
				{ID: "doc-2", OperationID: "op-1", FileName: "cedula.png", MIMEType: "image/png"},
			},
		},
	}
}

func testMatches() []domain.SearchMatch {
	return []domain.SearchMatch{{
		OperationID: "op-1",
		DocumentID:  "doc-1",
		FileName:    "factura.pdf",
		MIMEType:    domain.PDFMIMEType,
		StorageURL:  "file:///tmp/factura.pdf",
		MatchReason: domain.MatchReasonNumber,
		Context:     "internal prompt context",
		Snippet:     "Total $18.500",
		Score:       9,
	}}
}

// setupTestServices installs mocks for every service and returns a cleanup
// that removes them and resets flag state shared between commands.
func setupTestServices() (*testServices, func()) {
	matches := testMatches()
	ts := &testServices{
		search: &mockSearchService{result: &domain.SearchResult{Matches: matches, Context: "ctx"}},
		assistant: &mockAssistantService{answer: &domain.Answer{
			Text:    "El total es $18.500.",
			Source:  domain.AnswerSourceLLM,
			Matches: domain.PublicMatches(matches),
		}},
		operation: &mockOperationService{operations: testOperations()},
		settings:  &mockSettingsService{settings: domain.DefaultSettings()},
		actions:   &mockActionService{},
	}
	SetServices(&Services{
		Search:    ts.search,
		Assistant: ts.assistant,
		Operation: ts.operation,
		Settings:  ts.settings,
		Actions:   ts.actions,
	})

	return ts, func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	searchOperation, searchMode, searchJSON = "", "", false
	askJSON = false
	opListLimit, opJSON, opWait, opForce = 20, false, false, false
	opClientName, opClientID = "", ""
	serveAddr, serveFindPort, serveNoMCP = "", false, false
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

var errBoom = errors.New("boom")
