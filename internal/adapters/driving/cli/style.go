package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// palette styles CLI output. Styling is off unless stdout is a terminal.
type palette struct {
	enabled bool
	title   lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
	warn    lipgloss.Style
}

func newPalette(cmd *cobra.Command) palette {
	enabled := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}
	return palette{
		enabled: enabled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454")),
	}
}

func (p palette) render(s lipgloss.Style, text string) string {
	if !p.enabled {
		return text
	}
	return s.Render(text)
}

func (p palette) Title(text string) string {
	return p.render(p.title, text)
}

func (p palette) Dim(text string) string {
	return p.render(p.dim, text)
}

func (p palette) Accent(text string) string {
	return p.render(p.accent, text)
}

func (p palette) Warn(text string) string {
	return p.render(p.warn, text)
}
