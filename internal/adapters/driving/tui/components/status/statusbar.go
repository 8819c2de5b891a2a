// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateHelp     State = "help"
	StateMatches  State = "matches"
)

// Bar displays application status, the search mode and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	mode       domain.SearchMode
	message    string
	matchCount int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		mode:   domain.SearchModeStrict,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	mode := s.styles.Subtitle.Render("[" + s.mode.String() + "]")

	var state string
	switch s.state {
	case StateThinking:
		state = s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			state = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			state = s.styles.Error.Render("Error")
		}
	case StateHelp:
		state = s.styles.Normal.Render("Help")
	case StateReady, StateMatches:
		switch {
		case s.message != "":
			state = s.styles.Normal.Render(s.message)
		case s.matchCount == 1:
			state = s.styles.Normal.Render("1 match")
		case s.matchCount > 1:
			state = s.styles.Normal.Render(fmt.Sprintf("%d matches", s.matchCount))
		default:
			state = s.styles.Muted.Render("Ready")
		}
	}
	return mode + " " + state
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateMatches && s.matchCount > 0 {
		bindings = s.keymap.MatchesHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMode sets the displayed search mode.
func (s *Bar) SetMode(mode domain.SearchMode) {
	s.mode = mode
}

// Mode returns the displayed search mode.
func (s *Bar) Mode() domain.SearchMode {
	return s.mode
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetMatchCount sets the number of matches of the last answer.
func (s *Bar) SetMatchCount(count int) {
	s.matchCount = count
}

// MatchCount returns the current match count.
func (s *Bar) MatchCount() int {
	return s.matchCount
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets state, message and count. The mode is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.matchCount = 0
}
