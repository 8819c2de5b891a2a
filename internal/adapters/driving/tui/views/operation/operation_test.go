package operation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// MockOperationService implements driving.OperationService for testing.
type MockOperationService struct {
	operation    *domain.Operation
	reprocessErr error
	forced       []bool
}

func (m *MockOperationService) Create(context.Context, domain.CreateOperationRequest) (*domain.Operation, error) {
	return nil, nil
}

func (m *MockOperationService) List(context.Context, int) ([]domain.Operation, error) {
	return nil, nil
}

func (m *MockOperationService) Get(_ context.Context, id string) (*domain.Operation, error) {
	if m.operation == nil || m.operation.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.operation, nil
}

func (m *MockOperationService) Delete(context.Context, string) error { return nil }

func (m *MockOperationService) Reprocess(_ context.Context, id string, force bool) (*domain.ExtractionJob, error) {
	m.forced = append(m.forced, force)
	if m.reprocessErr != nil {
		return nil, m.reprocessErr
	}
	return &domain.ExtractionJob{ID: "job-1", OperationID: id, State: domain.JobStateQueued, Force: force}, nil
}

func (m *MockOperationService) Jobs(context.Context, string) ([]domain.ExtractionJob, error) {
	return nil, nil
}

func (m *MockOperationService) GetDocument(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *MockOperationService) DocumentContent(context.Context, string) (*domain.Document, []byte, error) {
	return nil, nil, domain.ErrNotFound
}

func testOperation() *domain.Operation {
	text := "FACTURA ELECTRONICA N° 018 Total a pagar $18.500"
	return &domain.Operation{
		ID:         "op-1",
		ClientName: "Ana Pérez",
		ClientID:   "12.345.678-9",
		AISummary:  "Factura de servicios por $18.500.",
		CreatedAt:  time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Documents: []domain.Document{
			{
				ID:            "doc-1",
				FileName:      "factura.pdf",
				MIMEType:      domain.PDFMIMEType,
				ExtractedText: &text,
				ExtractedFields: map[string]any{
					"tipo_documento": "Factura",
					"monto_total":    18500,
				},
			},
			{ID: "doc-2", FileName: "cedula.png", MIMEType: "image/png"},
		},
	}
}

func loadedView(t *testing.T, svc *MockOperationService) *View {
	t.Helper()
	v := NewView(nil, svc)
	v.SetDimensions(100, 60)
	cmd := v.Load("op-1")
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), "No operation selected.")
}

func TestView_Load(t *testing.T) {
	v := loadedView(t, &MockOperationService{operation: testOperation()})

	require.NotNil(t, v.Operation())
	view := v.View()
	assert.Contains(t, view, "Operation op-1")
	assert.Contains(t, view, "Ana Pérez")
	assert.Contains(t, view, "12.345.678-9")
	assert.Contains(t, view, "2025-03-14 09:30")
	assert.Contains(t, view, "Factura de servicios")
	assert.Contains(t, view, "Documents (2)")
	assert.Contains(t, view, "Type: Factura")
	assert.Contains(t, view, "Monto total: 18500")
	assert.Contains(t, view, "Total a pagar")
	assert.Contains(t, view, "pending extraction")
}

func TestView_LoadingState(t *testing.T) {
	v := NewView(nil, &MockOperationService{operation: testOperation()})

	v.Load("op-1")

	assert.Contains(t, v.View(), "Loading operation...")
}

func TestView_LoadNotFound(t *testing.T) {
	v := NewView(nil, &MockOperationService{})

	v.Update(v.Load("missing")())

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
	assert.Contains(t, v.View(), "Error: not found")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil)

	v.Update(v.Load("op-1")())

	assert.ErrorIs(t, v.Err(), ErrNoOperationService)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)
}

func TestView_Reprocess(t *testing.T) {
	tests := []struct {
		key       rune
		wantForce bool
	}{
		{'r', false},
		{'f', true},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			svc := &MockOperationService{operation: testOperation()}
			v := loadedView(t, svc)

			_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
			require.NotNil(t, cmd)
			v.Update(cmd())

			assert.Equal(t, []bool{tt.wantForce}, svc.forced)
			assert.Equal(t, "Extraction job job-1 queued", v.Notice())
			assert.Contains(t, v.View(), "Extraction job job-1 queued")
		})
	}
}

func TestView_ReprocessError(t *testing.T) {
	svc := &MockOperationService{operation: testOperation(), reprocessErr: domain.ErrQueueClosed}
	v := loadedView(t, svc)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrQueueClosed)
	assert.Contains(t, v.View(), "Operation op-1", "operation stays visible")
}

func TestView_AskAboutOperation(t *testing.T) {
	v := loadedView(t, &MockOperationService{operation: testOperation()})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ChatScoped{OperationID: "op-1"}, cmd())
}

func TestView_EscReturnsToList(t *testing.T) {
	v := loadedView(t, &MockOperationService{operation: testOperation()})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewOperations}, cmd())
}

func TestView_Scroll(t *testing.T) {
	v := loadedView(t, &MockOperationService{operation: testOperation()})
	v.SetDimensions(100, 10)

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.ScrollOffset())

	for range 100 {
		v.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, v.maxScrollOffset(), v.ScrollOffset())
	assert.Positive(t, v.ScrollOffset())
	assert.NotContains(t, v.View(), "Operation op-1")

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, v.maxScrollOffset()-1, v.ScrollOffset())
}

func TestView_LongTextPreviewTruncated(t *testing.T) {
	op := testOperation()
	long := strings.Repeat("palabra ", 100)
	op.Documents[0].ExtractedText = &long
	v := loadedView(t, &MockOperationService{operation: op})

	assert.Contains(t, v.View(), "...")
}

func TestView_ErrorOccurred(t *testing.T) {
	v := NewView(nil, nil)

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
}
