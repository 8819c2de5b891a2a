// Package operations provides the operations list view for the TUI.
package operations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// ListLimit is how many recent operations the view loads.
const ListLimit = 100

// ErrNoOperationService indicates that no operation service was provided.
var ErrNoOperationService = errors.New("operation service not available")

// View is the operations list view.
type View struct {
	styles     *styles.Styles
	operations driving.OperationService
	ctx        context.Context

	items        []domain.Operation
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	loading      bool
	err          error
}

// NewView creates a new operations view.
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

// Init loads the operations.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.operations
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.OperationsLoaded{Err: ErrNoOperationService}
		}
		ops, err := svc.List(ctx, ListLimit)
		return messages.OperationsLoaded{Operations: ops, Err: err}
	}
}

// Update handles messages for the operations view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.OperationsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.items = msg.Operations
			v.selected = min(v.selected, max(len(v.items)-1, 0))
			v.adjustScroll()
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
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.items)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if op := v.SelectedOperation(); op != nil {
			id := op.ID
			return v, func() tea.Msg {
				return messages.OperationRequested{ID: id}
			}
		}
	case "r":
		return v, v.Init()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	}
	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, separator, help and padding
	return max(v.height-6, 1)
}

// View renders the operations list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Operations (%d)", len(v.items))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading operations..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No operations uploaded yet."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.items))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderOperation(i, &v.items[i]))
			b.WriteString("\n")
		}
		if len(v.items) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.items))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderOperation(index int, op *domain.Operation) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	client := op.ClientName
	if op.ClientID != "" {
		client += " (" + op.ClientID + ")"
	}
	line := fmt.Sprintf("%s%s  %s  %d docs",
		indicator, op.CreatedAt.Format("2006-01-02 15:04"), client, len(op.Documents))

	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Operations returns the loaded operations.
func (v *View) Operations() []domain.Operation {
	return v.items
}

// SelectedOperation returns the highlighted operation, or nil.
func (v *View) SelectedOperation() *domain.Operation {
	if v.selected < 0 || v.selected >= len(v.items) {
		return nil
	}
	return &v.items[v.selected]
}

// Loading reports whether a reload is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
