package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/core/ranking"
	"github.com/custodia-labs/megafile/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs the lexical ranking pipeline over the stored corpus.
// It holds no per-request state; concurrent searches need no coordination.
type SearchService struct {
	store driven.OperationStore

	mu       sync.RWMutex
	settings domain.SearchSettings
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.OperationStore, settings domain.SearchSettings) *SearchService {
	return &SearchService{
		store:    store,
		settings: settings,
	}
}

// UpdateSettings swaps the search settings, e.g. after the config file changed.
func (s *SearchService) UpdateSettings(settings domain.SearchSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Settings returns the current search settings.
func (s *SearchService) Settings() domain.SearchSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Search ranks the candidate documents for a question.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	settings := s.Settings()

	logger.Section("Search Execution")
	logger.Debug("Question: %q", req.Question)

	mode := req.Mode
	if mode == "" {
		mode = settings.DefaultMode
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("search: %w: unknown mode %q", domain.ErrInvalidInput, mode)
	}
	logger.Debug("Mode: %s, operation scope: %q", mode, req.OperationID)

	q := ranking.NewQuery(req.Question)
	logger.Debug("Tokens: %v, digits: %q", q.Tokens, q.Digits)
	if q.IsEmpty() {
		logger.Debug("No searchable tokens, returning no matches")
		return emptyResult(), nil
	}

	ops, err := s.store.LoadCandidates(ctx, settings.CandidateQuery(req.OperationID))
	if err != nil {
		logger.Warn("Candidate loading failed: %v", err)
		return nil, fmt.Errorf("search: load candidates: %w", err)
	}
	logger.Debug("Loaded %d operations", len(ops))

	scored := ranking.ScoreAll(ops, q)
	matches := ranking.Select(scored, mode, settings.Selection)
	logger.Debug("Scored %d documents, selected %d", len(scored), len(matches))

	if len(matches) == 0 {
		return emptyResult(), nil
	}

	sources := snippetSources(ops)
	for i := range matches {
		m := &matches[i]
		if snippet, ok := ranking.BuildSnippet(sources[m.DocumentID], req.Question, q.Tokens); ok {
			m.Snippet = snippet
		}
		logger.Debug("  #%d %s score=%d tokens=%d reason=%s", i+1, m.DocumentID, m.Score, m.MatchedTokens, m.MatchReason)
	}

	return &domain.SearchResult{
		Matches: matches,
		Context: ranking.BuildContext(matches, settings.MaxContextMatches),
	}, nil
}

func emptyResult() *domain.SearchResult {
	return &domain.SearchResult{
		Matches: []domain.SearchMatch{},
		Context: domain.NoDocumentsContext,
	}
}

// snippetSources maps document IDs to the text snippets are cut from.
// Documents without a text layer fall back to their extracted fields.
func snippetSources(ops []domain.CandidateOperation) map[string]string {
	sources := make(map[string]string)
	for i := range ops {
		for j := range ops[i].Documents {
			doc := &ops[i].Documents[j]
			text := doc.Text
			if strings.TrimSpace(text) == "" {
				text = fieldsText(doc.FieldsJSON)
			}
			sources[doc.Document.ID] = text
		}
	}
	return sources
}

func fieldsText(fieldsJSON string) string {
	rows := ranking.FlattenFields(fieldsJSON)
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, row.Label+": "+row.Value)
	}
	return strings.Join(parts, "; ")
}
