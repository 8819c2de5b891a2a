package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/views/operation"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/views/operations"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	chatView       *chat.View
	operationsView *operations.View
	operationView  *operation.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when leaving help.
	previousView messages.ViewType

	// initial is asked as soon as the program starts.
	initial *domain.SearchRequest

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	chatView := chat.NewView(s, km, ports.Assistant, ports.Actions)
	if ports.Settings != nil {
		if settings, err := ports.Settings.Get(); err == nil {
			chatView.SetMode(settings.Search.DefaultMode)
		}
	}

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		help:           help.New(),
		chatView:       chatView,
		operationsView: operations.NewView(s, ports.Operation),
		operationView:  operation.NewView(s, ports.Operation),
		currentView:    messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.operationsView.WithContext(ctx)
	a.operationView.WithContext(ctx)
	return a
}

// WithInitialRequest asks req once the program starts.
func (a *App) WithInitialRequest(req domain.SearchRequest) *App {
	a.initial = &req
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("megafile"),
		a.chatView.Init(),
	}
	if a.initial != nil {
		req := *a.initial
		cmds = append(cmds, func() tea.Msg {
			return messages.QuestionSubmitted{Request: req}
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.OperationRequested:
		a.currentView = messages.ViewOperation
		return a, a.operationView.Load(msg.ID)

	case messages.OperationsLoaded:
		a.operationsView, cmd = a.operationsView.Update(msg)
		return a, cmd

	case messages.OperationLoaded, messages.ReprocessQueued:
		a.operationView, cmd = a.operationView.Update(msg)
		return a, cmd

	case messages.AnswerCompleted:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.ChatScoped:
		a.chatView.SetOperationScope(msg.OperationID)
		return a, a.switchTo(messages.ViewChat)

	case messages.QuestionSubmitted:
		a.initial = nil
		a.chatView.SetMode(msg.Request.Mode)
		a.chatView.SetOperationScope(msg.Request.OperationID)
		a.currentView = messages.ViewChat
		return a, a.chatView.Ask(msg.Request.Question)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keymap.Matches(keyStr, a.keymap.Quit) {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if keymap.Matches(keyStr, a.keymap.Back) || keymap.Matches(keyStr, a.keymap.Help) {
			a.currentView = a.previousView
		}
		return a, nil
	}
	if keymap.Matches(keyStr, a.keymap.Help) {
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	cmd := a.forward(msg)
	if a.currentView == messages.ViewChat {
		a.err = a.chatView.Err()
	}
	return a, cmd
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewOperations:
		a.operationsView, cmd = a.operationsView.Update(msg)
	case messages.ViewOperation:
		a.operationView, cmd = a.operationView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewOperations:
		return a.operationsView.Init()
	case messages.ViewOperation, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewOperations:
		return a.operationsView.View()
	case messages.ViewOperation:
		return a.operationView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.chatView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.chatView.SetDimensions(width, height)
	a.operationsView.SetDimensions(width, height)
	a.operationView.SetDimensions(width, height)
}
