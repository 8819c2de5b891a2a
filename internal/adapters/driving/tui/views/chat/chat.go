// Package chat provides the assistant conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// Match actions offered by the action menu.
const (
	ActionCopy      = "Copy snippet"
	ActionOpen      = "Open document"
	ActionOperation = "Show operation"
	ActionCancel    = "Cancel"
)

const (
	// rows taken by header, input, status bar and spacing
	chromeHeight = 8
	listHeight   = 10
	scrollStep   = 5
)

// ActionMenu is the action selection overlay for one match.
type ActionMenu struct {
	actions  []string
	selected int
	match    *domain.PublicMatch
}

// View is the chat view: transcript, question input, matches of the
// latest answer and the status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	list      *list.MatchList
	statusbar *status.Bar

	assistant driving.AssistantService
	actions   driving.ResultActionService
	ctx       context.Context

	transcript  []domain.ChatMessage
	mode        domain.SearchMode
	operationID string

	// pending is the message ID reserved for the answer in flight.
	pending string

	// scroll counts transcript lines hidden below the viewport.
	scroll int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
	actionMenu *ActionMenu
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	assistant driving.AssistantService,
	actions driving.ResultActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		list:       list.NewMatchList(s),
		statusbar:  status.NewBar(s, km),
		assistant:  assistant,
		actions:    actions,
		ctx:        context.Background(),
		mode:       domain.SearchModeStrict,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case messages.StatusMessage:
		v.statusbar.SetMessage(msg.Text)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}

	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Mode):
		v.ToggleMode()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Operations):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewOperations}
		}
	case keymap.Matches(keyStr, v.keymap.Focus):
		v.toggleFocus()
		return v, nil
	case keyStr == "pgup":
		v.scroll += scrollStep
		return v, nil
	case keyStr == "pgdown":
		v.scroll = max(v.scroll-scrollStep, 0)
		return v, nil
	}

	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleMatchesKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return v, v.submit()
	case tea.KeyEsc:
		// esc on an empty input drops the operation scope
		if v.input.Value() == "" {
			v.operationID = ""
		}
		v.input.Reset()
		return v, nil
	default:
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
}

func (v *View) handleMatchesKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		v.focusOnInput()
	case keymap.Matches(keyStr, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(keyStr, v.keymap.Select):
		if match := v.list.SelectedMatch(); match != nil {
			v.actionMenu = &ActionMenu{
				actions: []string{ActionCopy, ActionOpen, ActionOperation, ActionCancel},
				match:   match,
			}
		}
	}
	return v, nil
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case keymap.Matches(keyStr, v.keymap.Back):
		v.actionMenu = nil
	case keymap.Matches(keyStr, v.keymap.Select):
		action := v.actionMenu.actions[v.actionMenu.selected]
		match := v.actionMenu.match
		v.actionMenu = nil
		return v, v.executeAction(action, match)
	}
	return v, nil
}

func (v *View) executeAction(action string, match *domain.PublicMatch) tea.Cmd {
	if match == nil {
		return nil
	}

	switch action {
	case ActionCopy:
		switch {
		case v.actions == nil:
			v.statusbar.SetMessage("Copy not available")
		case match.Snippet == "":
			v.statusbar.SetMessage("Nothing to copy")
		default:
			if err := v.actions.CopyToClipboard(v.ctx, match.Snippet); err != nil {
				v.statusbar.SetMessage("Copy: " + err.Error())
			} else {
				v.statusbar.SetMessage("Copied to clipboard")
			}
		}
	case ActionOpen:
		if v.actions == nil {
			v.statusbar.SetMessage("Open not available")
			return nil
		}
		if err := v.actions.OpenDocument(v.ctx, match); err != nil {
			v.statusbar.SetMessage("Open: " + err.Error())
		} else {
			v.statusbar.SetMessage("Opening " + match.FileName + "...")
		}
	case ActionOperation:
		id := match.OperationID
		return func() tea.Msg {
			return messages.OperationRequested{ID: id}
		}
	}
	return nil
}

// Ask submits question as if typed into the input.
func (v *View) Ask(question string) tea.Cmd {
	v.input.SetValue(question)
	return v.submit()
}

// submit appends the question to the transcript and starts the request.
func (v *View) submit() tea.Cmd {
	question := v.input.Question()
	if question == "" || v.pending != "" {
		return nil
	}

	v.transcript = append(v.transcript, domain.UserMessage(uuid.NewString(), question))
	v.pending = uuid.NewString()
	v.scroll = 0
	v.err = nil
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateThinking)

	return v.ask(domain.SearchRequest{
		Question:    question,
		OperationID: v.operationID,
		Mode:        v.mode,
	}, v.pending)
}

func (v *View) ask(req domain.SearchRequest, messageID string) tea.Cmd {
	assistant := v.assistant
	ctx := v.ctx
	return func() tea.Msg {
		if assistant == nil {
			return messages.AnswerCompleted{MessageID: messageID, Err: ErrNoAssistantService}
		}
		answer, err := assistant.Ask(ctx, req)
		return messages.AnswerCompleted{MessageID: messageID, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	// stale reply after a reset
	if msg.MessageID != v.pending {
		return
	}
	v.pending = ""

	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Answer == nil {
		return
	}

	v.transcript = append(v.transcript, domain.AssistantMessage(msg.MessageID, *msg.Answer))
	v.list.SetMatches(msg.Answer.Matches)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMatchCount(len(msg.Answer.Matches))
	v.scroll = 0
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) toggleFocus() {
	if v.focusInput {
		if v.list.IsEmpty() {
			return
		}
		v.focusInput = false
		v.input.Blur()
		v.statusbar.SetState(status.StateMatches)
		return
	}
	v.focusOnInput()
}

func (v *View) focusOnInput() {
	v.focusInput = true
	v.input.Focus()
	if v.statusbar.State() == status.StateMatches {
		v.statusbar.SetState(status.StateReady)
	}
}

// ToggleMode switches between strict and broad search.
func (v *View) ToggleMode() {
	if v.mode == domain.SearchModeBroad {
		v.SetMode(domain.SearchModeStrict)
	} else {
		v.SetMode(domain.SearchModeBroad)
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)

	header := v.styles.Title.Render("MegaFile")
	if v.operationID != "" {
		header += " " + v.styles.Muted.Render("operation "+v.operationID)
	}
	sections = append(sections, header, "", v.renderTranscript(), "", v.input.View())

	if !v.list.IsEmpty() {
		sections = append(sections, "", v.list.View())
	}
	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask a question about the uploaded documents.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))
	var lines []string
	for _, m := range v.transcript {
		var block string
		if m.IsAssistant() {
			block = v.styles.AssistantMessage.Render("Assistant: ") + m.Text
			if m.Source == domain.AnswerSourceFallback {
				block += "\n" + v.styles.Warning.Render("(language model unavailable, answer built from matches)")
			}
		} else {
			block = v.styles.UserMessage.Render("You: ") + m.Text
		}
		lines = append(lines, strings.Split(wrap.Render(block), "\n")...)
		lines = append(lines, "")
	}
	if v.pending != "" {
		lines = append(lines, v.styles.Muted.Render("Assistant is thinking..."))
	}

	return strings.Join(visibleWindow(lines, v.transcriptHeight(), v.scroll), "\n")
}

// visibleWindow returns the lines shown for a viewport of height rows
// scrolled up by scroll rows from the bottom.
func visibleWindow(lines []string, height, scroll int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	scroll = min(scroll, len(lines)-height)
	end := len(lines) - scroll
	return lines[end-height : end]
}

func (v *View) transcriptHeight() int {
	h := v.height - chromeHeight
	if !v.list.IsEmpty() {
		h -= listHeight
	}
	return max(h, 3)
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions)+1)
	lines = append(lines, v.styles.Subtitle.Render(v.actionMenu.match.FileName))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, listHeight)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Mode returns the active search mode.
func (v *View) Mode() domain.SearchMode {
	return v.mode
}

// SetMode sets the search mode used for the next question.
func (v *View) SetMode(mode domain.SearchMode) {
	if !mode.IsValid() {
		return
	}
	v.mode = mode
	v.statusbar.SetMode(mode)
}

// SetOperationScope restricts questions to one operation; empty clears it.
func (v *View) SetOperationScope(operationID string) {
	v.operationID = operationID
}

// OperationScope returns the operation questions are restricted to.
func (v *View) OperationScope() string {
	return v.operationID
}

// Transcript returns the conversation so far.
func (v *View) Transcript() []domain.ChatMessage {
	return v.transcript
}

// Matches returns the matches of the latest answer.
func (v *View) Matches() []domain.PublicMatch {
	return v.list.Matches()
}

// Pending reports whether an answer is in flight.
func (v *View) Pending() bool {
	return v.pending != ""
}

// SetQuestion sets the input value.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// ActionMenuOpen reports whether the match action menu is shown.
func (v *View) ActionMenuOpen() bool {
	return v.actionMenu != nil
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the conversation and returns focus to the input.
// An answer still in flight is discarded when it arrives.
func (v *View) Reset() {
	v.transcript = nil
	v.pending = ""
	v.scroll = 0
	v.err = nil
	v.actionMenu = nil
	v.list.SetMatches(nil)
	v.input.Reset()
	v.focusOnInput()
	v.statusbar.Clear()
}
