package chat

import (
	"context"
	"errors"
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// MockAssistantService implements driving.AssistantService for testing.
type MockAssistantService struct {
	AskFunc  func(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error)
	Requests []domain.SearchRequest
}

func (m *MockAssistantService) Ask(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error) {
	m.Requests = append(m.Requests, req)
	if m.AskFunc != nil {
		return m.AskFunc(ctx, req)
	}
	return &domain.Answer{Text: "Sin datos", Source: domain.AnswerSourceNoMatch}, nil
}

// MockResultActionService implements driving.ResultActionService for testing.
type MockResultActionService struct {
	Copied []string
	Opened []string
	Err    error
}

func (m *MockResultActionService) CopyToClipboard(_ context.Context, text string) error {
	m.Copied = append(m.Copied, text)
	return m.Err
}

func (m *MockResultActionService) OpenDocument(_ context.Context, match *domain.PublicMatch) error {
	m.Opened = append(m.Opened, match.DocumentID)
	return m.Err
}

func answerWithMatches() *domain.Answer {
	return &domain.Answer{
		Text:   "El total de la factura 018 es 18.500.",
		Source: domain.AnswerSourceLLM,
		Matches: []domain.PublicMatch{
			{OperationID: "op-1", DocumentID: "doc-1", FileName: "factura.pdf", MatchReason: domain.MatchReasonNumber, Snippet: "Total 18.500"},
			{OperationID: "op-1", DocumentID: "doc-2", FileName: "boleta.png", MatchReason: domain.MatchReasonContent},
		},
	}
}

func newReadyView(assistant *MockAssistantService, actions *MockResultActionService) *View {
	v := NewView(nil, nil, assistant, actions)
	v.SetDimensions(100, 40)
	return v
}

// ask types a question, submits it and feeds the reply back.
func ask(t *testing.T, v *View, question string) {
	t.Helper()
	v.SetQuestion(question)
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.NotNil(t, v.keymap)
	assert.False(t, v.Ready())
	assert.True(t, v.InputFocused())
	assert.Equal(t, domain.SearchModeStrict, v.Mode())
	assert.NotNil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_WithContext(t *testing.T) {
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("k"), "v")
	v := NewView(nil, nil, nil, nil)

	assert.Same(t, v, v.WithContext(ctx))
	assert.Equal(t, ctx, v.ctx)
}

func TestView_Update_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil, nil)

	v, _ = v.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.True(t, v.Ready())
	assert.Contains(t, v.View(), "MegaFile")
	assert.Contains(t, v.View(), "Ask a question")
}

func TestView_AskAppendsTranscript(t *testing.T) {
	assistant := &MockAssistantService{
		AskFunc: func(context.Context, domain.SearchRequest) (*domain.Answer, error) {
			return answerWithMatches(), nil
		},
	}
	v := newReadyView(assistant, nil)

	ask(t, v, "  total factura 018 ")

	require.Len(t, assistant.Requests, 1)
	assert.Equal(t, "total factura 018", assistant.Requests[0].Question)
	assert.Equal(t, domain.SearchModeStrict, assistant.Requests[0].Mode)

	transcript := v.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, domain.ChatRoleUser, transcript[0].Role)
	assert.True(t, transcript[1].IsAssistant())
	assert.Len(t, transcript[1].Matches, 2)
	assert.Len(t, v.Matches(), 2)
	assert.False(t, v.Pending())
	assert.Empty(t, v.input.Value())

	view := v.View()
	assert.Contains(t, view, "You:")
	assert.Contains(t, view, "18.500")
	assert.Contains(t, view, "Matches (2)")
	assert.Contains(t, view, "2 matches")
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	assistant := &MockAssistantService{}
	v := newReadyView(assistant, nil)
	v.SetQuestion("   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, v.Transcript())
}

func TestView_SecondQuestionWhilePendingIgnored(t *testing.T) {
	v := newReadyView(&MockAssistantService{}, nil)
	v.SetQuestion("primera")
	_, first := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	v.SetQuestion("segunda")
	_, second := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, second)
	assert.True(t, v.Pending())
	assert.Contains(t, v.View(), "thinking")
}

func TestView_StaleAnswerDropped(t *testing.T) {
	v := newReadyView(&MockAssistantService{}, nil)
	v.SetQuestion("hola")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	v.Reset()
	v.Update(cmd())

	assert.Empty(t, v.Transcript())
}

func TestView_AskError(t *testing.T) {
	assistant := &MockAssistantService{
		AskFunc: func(context.Context, domain.SearchRequest) (*domain.Answer, error) {
			return nil, errors.New("store offline")
		},
	}
	v := newReadyView(assistant, nil)

	ask(t, v, "rut cliente")

	assert.EqualError(t, v.Err(), "store offline")
	assert.Len(t, v.Transcript(), 1)
	assert.Contains(t, v.View(), "Error: store offline")
}

func TestView_NoAssistantService(t *testing.T) {
	v := NewView(nil, nil, nil, nil)
	v.SetDimensions(80, 24)

	ask(t, v, "hola")

	assert.ErrorIs(t, v.Err(), ErrNoAssistantService)
}

func TestView_FallbackAnswerFlagged(t *testing.T) {
	assistant := &MockAssistantService{
		AskFunc: func(context.Context, domain.SearchRequest) (*domain.Answer, error) {
			a := answerWithMatches()
			a.Source = domain.AnswerSourceFallback
			return a, nil
		},
	}
	v := newReadyView(assistant, nil)

	ask(t, v, "factura")

	assert.Contains(t, v.View(), "language model unavailable")
}

func TestView_ModeToggleAndScope(t *testing.T) {
	assistant := &MockAssistantService{}
	v := newReadyView(assistant, nil)
	v.SetOperationScope("op-7")

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.Equal(t, domain.SearchModeBroad, v.Mode())
	assert.Contains(t, v.View(), "[broad]")
	assert.Contains(t, v.View(), "operation op-7")

	ask(t, v, "monto")
	require.Len(t, assistant.Requests, 1)
	assert.Equal(t, domain.SearchModeBroad, assistant.Requests[0].Mode)
	assert.Equal(t, "op-7", assistant.Requests[0].OperationID)

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	assert.Equal(t, domain.SearchModeStrict, v.Mode())

	v.SetMode("bogus")
	assert.Equal(t, domain.SearchModeStrict, v.Mode())
}

func TestView_OperationsShortcut(t *testing.T) {
	v := newReadyView(nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlO})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewOperations}, cmd())
}

func TestView_FocusRequiresMatches(t *testing.T) {
	v := newReadyView(&MockAssistantService{}, nil)

	v.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.True(t, v.InputFocused())
}

func TestView_MatchActions(t *testing.T) {
	assistant := &MockAssistantService{
		AskFunc: func(context.Context, domain.SearchRequest) (*domain.Answer, error) {
			return answerWithMatches(), nil
		},
	}
	actions := &MockResultActionService{}
	v := newReadyView(assistant, actions)
	ask(t, v, "factura")

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.False(t, v.InputFocused())

	// copy the first snippet
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.ActionMenuOpen())
	assert.Contains(t, v.View(), ActionCopy)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, v.ActionMenuOpen())
	assert.Equal(t, []string{"Total 18.500"}, actions.Copied)
	assert.Equal(t, "Copied to clipboard", v.StatusMessage())

	// open the second document
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"doc-2"}, actions.Opened)

	// copying an empty snippet is refused
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Nothing to copy", v.StatusMessage())

	// show operation
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OperationRequested{ID: "op-1"}, cmd())

	// esc closes the menu, then returns to the input
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.ActionMenuOpen())
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, v.InputFocused())
}

func TestView_ActionErrors(t *testing.T) {
	assistant := &MockAssistantService{
		AskFunc: func(context.Context, domain.SearchRequest) (*domain.Answer, error) {
			return answerWithMatches(), nil
		},
	}
	actions := &MockResultActionService{Err: errors.New("no clipboard")}
	v := newReadyView(assistant, actions)
	ask(t, v, "factura")

	cmd := v.executeAction(ActionCopy, &v.Matches()[0])

	assert.Nil(t, cmd)
	assert.Equal(t, "Copy: no clipboard", v.StatusMessage())

	v.actions = nil
	v.executeAction(ActionOpen, &v.Matches()[0])
	assert.Equal(t, "Open not available", v.StatusMessage())
	assert.Nil(t, v.executeAction(ActionCancel, &v.Matches()[0]))
}

func TestView_StatusMessage(t *testing.T) {
	v := newReadyView(nil, nil)

	v.Update(messages.StatusMessage{Text: "Queued extraction"})

	assert.Equal(t, "Queued extraction", v.StatusMessage())
}

func TestVisibleWindow(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strconv.Itoa(i)
	}

	tests := []struct {
		name   string
		height int
		scroll int
		want   []string
	}{
		{"fits", 20, 0, lines},
		{"bottom", 3, 0, []string{"7", "8", "9"}},
		{"scrolled", 3, 2, []string{"5", "6", "7"}},
		{"clamped at top", 3, 50, []string{"0", "1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visibleWindow(lines, tt.height, tt.scroll))
		})
	}
}

func TestView_Reset(t *testing.T) {
	assistant := &MockAssistantService{
		AskFunc: func(context.Context, domain.SearchRequest) (*domain.Answer, error) {
			return answerWithMatches(), nil
		},
	}
	v := newReadyView(assistant, nil)
	ask(t, v, "factura")
	v.Update(tea.KeyMsg{Type: tea.KeyTab})

	v.Reset()

	assert.Empty(t, v.Transcript())
	assert.Empty(t, v.Matches())
	assert.True(t, v.InputFocused())
	assert.NoError(t, v.Err())
}

func TestView_EscClearsInputThenScope(t *testing.T) {
	v := newReadyView(nil, nil)
	v.SetOperationScope("op-9")
	v.SetQuestion("borrador")

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, v.input.Value())
	assert.Equal(t, "op-9", v.OperationScope())

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, v.OperationScope())
}

func TestView_AskMethod(t *testing.T) {
	assistant := &MockAssistantService{}
	v := newReadyView(assistant, nil)

	cmd := v.Ask("cuanto suma la boleta")
	require.NotNil(t, cmd)
	v.Update(cmd())

	require.Len(t, assistant.Requests, 1)
	assert.Equal(t, "cuanto suma la boleta", assistant.Requests[0].Question)
	assert.Len(t, v.Transcript(), 2)
}
