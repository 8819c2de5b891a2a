// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/megafile/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// MatchList displays the matches of one answer in a navigable list.
type MatchList struct {
	matches  []domain.PublicMatch
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMatchList creates a new match list component.
func NewMatchList(s *styles.Styles) *MatchList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &MatchList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the match list.
func (m *MatchList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (m *MatchList) Update(msg tea.Msg) (*MatchList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			m.MoveUp()
		case "down", "j":
			m.MoveDown()
		}
	}
	return m, nil
}

// View renders the match list.
func (m *MatchList) View() string {
	if len(m.matches) == 0 {
		return m.styles.Muted.Render("No matches")
	}

	lines := make([]string, 0, len(m.matches)+2)
	lines = append(lines, m.styles.Subtitle.Render(fmt.Sprintf("Matches (%d)", len(m.matches))), "")

	// Each match takes two lines.
	visible := (m.height - 2) / 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(m.matches))

	for i := start; i < end; i++ {
		lines = append(lines, m.renderMatch(i, &m.matches[i]))
	}

	return strings.Join(lines, "\n")
}

func (m *MatchList) renderMatch(index int, match *domain.PublicMatch) string {
	indicator := "  "
	if index == m.selected {
		indicator = "> "
	}

	name := ellipsis(match.FileName, max(m.width-len(match.MatchReason)-8, 10))
	reason := string(match.MatchReason)

	var title string
	if index == m.selected {
		title = m.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, name, reason))
	} else {
		title = m.styles.Normal.Render(indicator+name+"  ") + m.styles.Muted.Render(reason)
	}

	snippet := match.Snippet
	if snippet == "" {
		snippet = "(no text extracted)"
	}
	snippet = strings.Join(strings.Fields(snippet), " ")
	return title + "\n" + m.styles.Snippet.Render("    "+ellipsis(snippet, max(m.width-6, 20)))
}

func ellipsis(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return domain.TruncateRunes(s, n-3) + "..."
}

// SetMatches replaces the list contents and resets the selection.
func (m *MatchList) SetMatches(matches []domain.PublicMatch) {
	m.matches = matches
	m.selected = 0
}

// Matches returns the current matches.
func (m *MatchList) Matches() []domain.PublicMatch {
	return m.matches
}

// Selected returns the index of the selected match.
func (m *MatchList) Selected() int {
	return m.selected
}

// SetSelected sets the selected index.
func (m *MatchList) SetSelected(index int) {
	if index >= 0 && index < len(m.matches) {
		m.selected = index
	}
}

// SelectedMatch returns the currently selected match, or nil if none.
func (m *MatchList) SelectedMatch() *domain.PublicMatch {
	if m.selected < 0 || m.selected >= len(m.matches) {
		return nil
	}
	return &m.matches[m.selected]
}

// MoveUp moves selection up.
func (m *MatchList) MoveUp() {
	if m.selected > 0 {
		m.selected--
	}
}

// MoveDown moves selection down.
func (m *MatchList) MoveDown() {
	if m.selected < len(m.matches)-1 {
		m.selected++
	}
}

// SetDimensions sets the component dimensions.
func (m *MatchList) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// Count returns the number of matches.
func (m *MatchList) Count() int {
	return len(m.matches)
}

// IsEmpty returns whether the list is empty.
func (m *MatchList) IsEmpty() bool {
	return len(m.matches) == 0
}
