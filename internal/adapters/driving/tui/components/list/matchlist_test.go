package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

func sampleMatches() []domain.PublicMatch {
	return []domain.PublicMatch{
		{DocumentID: "d1", FileName: "factura.pdf", MatchReason: domain.MatchReasonNumber, Snippet: "Total 18.500"},
		{DocumentID: "d2", FileName: "cedula.png", MatchReason: domain.MatchReasonContent, Snippet: "RUT 12.345.678-9"},
		{DocumentID: "d3", FileName: "escaneo.pdf", MatchReason: domain.MatchReasonContent},
	}
}

func TestNewMatchList(t *testing.T) {
	m := NewMatchList(nil)

	require.NotNil(t, m)
	assert.NotNil(t, m.styles)
	assert.True(t, m.IsEmpty())
	assert.Nil(t, m.SelectedMatch())
	assert.Nil(t, m.Init())
}

func TestMatchList_ViewEmpty(t *testing.T) {
	assert.Contains(t, NewMatchList(nil).View(), "No matches")
}

func TestMatchList_View(t *testing.T) {
	m := NewMatchList(nil)
	m.SetDimensions(100, 20)
	m.SetMatches(sampleMatches())

	view := m.View()

	assert.Contains(t, view, "Matches (3)")
	assert.Contains(t, view, "factura.pdf")
	assert.Contains(t, view, "exact number match")
	assert.Contains(t, view, "RUT 12.345.678-9")
	assert.Contains(t, view, "(no text extracted)")
}

func TestMatchList_ViewScrollsToSelection(t *testing.T) {
	m := NewMatchList(nil)
	m.SetDimensions(100, 4)
	m.SetMatches(sampleMatches())
	m.SetSelected(2)

	view := m.View()

	assert.Contains(t, view, "escaneo.pdf")
	assert.NotContains(t, view, "factura.pdf")
}

func TestMatchList_Navigation(t *testing.T) {
	m := NewMatchList(nil)
	m.SetMatches(sampleMatches())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.Selected())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, m.Selected(), "stops at the last match")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, m.Selected())
	assert.Equal(t, "d2", m.SelectedMatch().DocumentID)

	m.MoveUp()
	m.MoveUp()
	assert.Equal(t, 0, m.Selected())
}

func TestMatchList_SetMatchesResetsSelection(t *testing.T) {
	m := NewMatchList(nil)
	m.SetMatches(sampleMatches())
	m.SetSelected(2)

	m.SetMatches(sampleMatches()[:1])

	assert.Equal(t, 0, m.Selected())
	assert.Equal(t, 1, m.Count())
}

func TestMatchList_SetSelectedOutOfRange(t *testing.T) {
	m := NewMatchList(nil)
	m.SetMatches(sampleMatches())

	m.SetSelected(7)
	m.SetSelected(-1)

	assert.Equal(t, 0, m.Selected())
}

func TestEllipsis(t *testing.T) {
	assert.Equal(t, "corto", ellipsis("corto", 10))
	assert.Equal(t, "añoañ...", ellipsis(strings.Repeat("año", 5), 8))
}
