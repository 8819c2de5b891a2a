package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns public matches", func(t *testing.T) {
		mockSearch := &mockSearchService{
			result: &domain.SearchResult{
				Matches: []domain.SearchMatch{{
					OperationID:   "op-1",
					DocumentID:    "doc-1",
					FileName:      "factura.pdf",
					MIMEType:      domain.PDFMIMEType,
					MatchReason:   domain.MatchReasonPhrase,
					Snippet:       "factura 018",
					Score:         9,
					MatchedTokens: 2,
				}},
				Context: "ctx",
			},
		}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{
			Question:    "factura 018",
			OperationID: "op-1",
			Mode:        "broad",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Matches, 1)
		assert.Equal(t, "doc-1", output.Matches[0].DocumentID)
		assert.Equal(t, "factura 018", output.Matches[0].Snippet)
		assert.Equal(t, domain.SearchModeBroad, mockSearch.lastReq.Mode)
		assert.Equal(t, "op-1", mockSearch.lastReq.OperationID)
	})

	t.Run("empty mode is left to the service default", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Question: "carnet"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, mockSearch.lastReq.Mode)
	})

	t.Run("short question is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Question: " a "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Question: "carnet", Mode: "fuzzy"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{err: errors.New("search failed")}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Question: "carnet"})

		assert.ErrorContains(t, err, "search failed")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()
	answer := &domain.Answer{
		Text:    "El RUT aparece en la operación op-1.",
		Source:  domain.AnswerSourceLLM,
		Matches: []domain.PublicMatch{{OperationID: "op-1", DocumentID: "doc-1"}},
	}
	server, err := NewServer(&Ports{
		Search:    &mockSearchService{},
		Assistant: &mockAssistantService{answer: answer},
	})
	require.NoError(t, err)

	_, output, err := server.handleAsk(ctx, nil, SearchInput{Question: "¿cuál es el RUT?"})

	require.NoError(t, err)
	assert.Equal(t, answer.Text, output.Answer)
	assert.Equal(t, "llm", output.Source)
	assert.Len(t, output.Matches, 1)

	_, _, err = server.handleAsk(ctx, nil, SearchInput{Question: "no"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServer_handleHighlights(t *testing.T) {
	ctx := context.Background()
	evidence := &mockEvidenceService{highlights: &domain.DocumentHighlights{
		DocumentID: "doc-1",
		FileName:   "factura.pdf",
		Pages:      []domain.PageHighlight{{Page: 1, Boxes: []domain.Box{{X: 10, Y: 20, Width: 30, Height: 12}}}},
	}}
	server, err := NewServer(&Ports{Search: &mockSearchService{}, Evidence: evidence})
	require.NoError(t, err)

	_, output, err := server.handleHighlights(ctx, nil, HighlightsInput{DocumentID: "doc-1", Question: "factura"})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", output.DocumentID)
	require.Len(t, output.Pages, 1)
	assert.Len(t, output.Pages[0].Boxes, 1)

	evidence.err = domain.ErrNotFound
	_, _, err = server.handleHighlights(ctx, nil, HighlightsInput{DocumentID: "nope", Question: "factura"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
