// Package operation provides the operation detail view for the TUI.
package operation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/core/ranking"
)

// previewChars bounds the extracted text shown per document.
const previewChars = 240

// ErrNoOperationService indicates that no operation service was provided.
var ErrNoOperationService = errors.New("operation service not available")

// View shows one operation with its documents and extracted fields.
type View struct {
	styles     *styles.Styles
	operations driving.OperationService
	ctx        context.Context

	operation    *domain.Operation
	notice       string
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new operation detail view.
func NewView(s *styles.Styles, operations driving.OperationService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		operations: operations,
		ctx:        context.Background(),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load resets the view and fetches the operation.
func (v *View) Load(id string) tea.Cmd {
	v.operation = nil
	v.notice = ""
	v.scrollOffset = 0
	v.err = nil
	v.loading = true

	svc := v.operations
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.OperationLoaded{Err: ErrNoOperationService}
		}
		op, err := svc.Get(ctx, id)
		return messages.OperationLoaded{Operation: op, Err: err}
	}
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.OperationLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.operation = msg.Operation
		}
		return v, nil

	case messages.ReprocessQueued:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Job != nil {
			v.notice = fmt.Sprintf("Extraction job %s %s", msg.Job.ID, msg.Job.State)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "r":
		return v, v.reprocess(false)
	case "f":
		return v, v.reprocess(true)
	case "a":
		if v.operation != nil {
			id := v.operation.ID
			return v, func() tea.Msg {
				return messages.ChatScoped{OperationID: id}
			}
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewOperations}
		}
	}
	return v, nil
}

func (v *View) reprocess(force bool) tea.Cmd {
	if v.operation == nil || v.operations == nil {
		return nil
	}
	svc := v.operations
	ctx := v.ctx
	id := v.operation.ID
	return func() tea.Msg {
		job, err := svc.Reprocess(ctx, id, force)
		return messages.ReprocessQueued{Job: job, Err: err}
	}
}

// View renders the operation.
func (v *View) View() string {
	var b strings.Builder

	switch {
	case v.loading:
		b.WriteString(v.styles.Title.Render("Operation"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("Loading operation..."))
	case v.operation == nil && v.err != nil:
		b.WriteString(v.styles.Title.Render("Operation"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.operation == nil:
		b.WriteString(v.styles.Muted.Render("No operation selected."))
	default:
		lines := v.contentLines()
		end := min(v.scrollOffset+v.visibleLines(), len(lines))
		b.WriteString(strings.Join(lines[v.scrollOffset:end], "\n"))
		if v.err != nil {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		}
		if v.notice != "" {
			b.WriteString("\n\n")
			b.WriteString(v.styles.Success.Render(v.notice))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [r] reprocess  [f] force  [a] ask about this  [esc] back"))
	return b.String()
}

func (v *View) contentLines() []string {
	op := v.operation
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	lines := []string{
		v.styles.Title.Render("Operation " + op.ID),
		"",
		v.label("Client") + op.ClientName,
		v.label("Client ID") + op.ClientID,
		v.label("Created") + op.CreatedAt.Format("2006-01-02 15:04"),
	}
	if op.AISummary != "" {
		lines = append(lines, "", v.styles.Subtitle.Render("Summary"))
		lines = append(lines, strings.Split(wrap.Render(op.AISummary), "\n")...)
	}

	lines = append(lines, "", v.styles.Subtitle.Render(fmt.Sprintf("Documents (%d)", len(op.Documents))))
	for i := range op.Documents {
		lines = append(lines, "")
		lines = append(lines, v.documentLines(&op.Documents[i], wrap)...)
	}
	return lines
}

func (v *View) documentLines(doc *domain.Document, wrap lipgloss.Style) []string {
	lines := []string{v.styles.Normal.Render(doc.FileName) + "  " + v.styles.Muted.Render(doc.MIMEType)}
	if doc.IsPending() {
		return append(lines, v.styles.Warning.Render("  pending extraction"))
	}

	rows := ranking.FlattenFields(domain.FieldsJSON(doc.ExtractedFields))
	if docType := ranking.DocumentType(rows); docType != "" {
		lines = append(lines, "  "+v.label("Type")+docType)
	}
	for _, row := range rows {
		lines = append(lines, "  "+v.label(row.Label)+row.Value)
	}

	if text := strings.Join(strings.Fields(doc.Text()), " "); text != "" {
		preview := domain.TruncateRunes(text, previewChars)
		if preview != text {
			preview += "..."
		}
		lines = append(lines, strings.Split(v.styles.Snippet.Render(wrap.Render(preview)), "\n")...)
	}
	return lines
}

func (v *View) label(s string) string {
	return v.styles.Muted.Render(s + ": ")
}

func (v *View) visibleLines() int {
	// help footer, notice and padding
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	if v.operation == nil {
		return 0
	}
	return max(len(v.contentLines())-v.visibleLines(), 0)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Operation returns the displayed operation.
func (v *View) Operation() *domain.Operation {
	return v.operation
}

// Notice returns the last job notice.
func (v *View) Notice() string {
	return v.notice
}

// ScrollOffset returns the current scroll position.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
