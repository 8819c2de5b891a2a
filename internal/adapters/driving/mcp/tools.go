package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/services"
)

// SearchInput is the input schema for the search and ask tools.
type SearchInput struct {
	Question    string `json:"question" jsonschema:"the question or keywords, at least 3 characters"`
	OperationID string `json:"operation_id,omitempty" jsonschema:"restrict the search to one operation"`
	Mode        string `json:"mode,omitempty" jsonschema:"strict (default) keeps the best cluster, broad keeps every match"`
}

// request validates the input and converts it to a domain request.
func (in SearchInput) request() (domain.SearchRequest, error) {
	if err := services.ValidateQuestion(in.Question); err != nil {
		return domain.SearchRequest{}, err
	}
	var mode domain.SearchMode
	if in.Mode != "" {
		m, err := domain.ParseSearchMode(in.Mode)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		mode = m
	}
	return domain.SearchRequest{Question: in.Question, OperationID: in.OperationID, Mode: mode}, nil
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Matches []domain.PublicMatch `json:"matches"`
	Count   int                  `json:"count"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string               `json:"answer"`
	Source  string               `json:"source"`
	Matches []domain.PublicMatch `json:"matches"`
}

// HighlightsInput is the input schema for the highlights tool.
type HighlightsInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to inspect"`
	Question   string `json:"question" jsonschema:"the question whose evidence to locate"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Rank the uploaded documents for a question and return the best matches with snippets",
	}, s.handleSearch)

	if s.ports.Assistant != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only the uploaded documents, citing operation and document IDs",
		}, s.handleAsk)
	}

	if s.ports.Evidence != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "document_highlights",
			Description: "Locate the evidence for a question inside one document, page by page",
		}, s.handleHighlights)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req, err := input.request()
	if err != nil {
		return nil, SearchOutput{}, err
	}

	result, err := s.ports.Search.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	matches := domain.PublicMatches(result.Matches)
	return nil, SearchOutput{Matches: matches, Count: len(matches)}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req, err := input.request()
	if err != nil {
		return nil, AskOutput{}, err
	}

	answer, err := s.ports.Assistant.Ask(ctx, req)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Source:  string(answer.Source),
		Matches: answer.Matches,
	}, nil
}

// handleHighlights handles the highlights tool invocation.
func (s *Server) handleHighlights(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HighlightsInput,
) (*mcp.CallToolResult, domain.DocumentHighlights, error) {
	if err := services.ValidateQuestion(input.Question); err != nil {
		return nil, domain.DocumentHighlights{}, err
	}

	highlights, err := s.ports.Evidence.Highlights(ctx, input.DocumentID, input.Question)
	if err != nil {
		return nil, domain.DocumentHighlights{}, err
	}
	return nil, *highlights, nil
}
