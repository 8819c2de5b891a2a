package domain

import (
	"fmt"
	"strings"
	"time"
)

// SearchMode selects the relevance policy applied to scored documents.
type SearchMode string

// Available search modes.
const (
	// SearchModeStrict keeps a tight cluster around the best match.
	SearchModeStrict SearchMode = "strict"

	// SearchModeBroad keeps every positively scored match up to the cap.
	SearchModeBroad SearchMode = "broad"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	return m == SearchModeStrict || m == SearchModeBroad
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// ParseSearchMode maps user input to a mode. Empty input means strict.
func ParseSearchMode(s string) (SearchMode, error) {
	m := SearchMode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return SearchModeStrict, nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown search mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// MatchReason is the human-readable explanation attached to a match.
type MatchReason string

// Match reasons, in increasing display priority.
const (
	MatchReasonContent MatchReason = "content match"
	MatchReasonPhrase  MatchReason = "exact phrase match"
	MatchReasonNumber  MatchReason = "exact number match"
)

// Fixed texts shown when nothing relevant was found.
const (
	// NoDocumentsContext replaces the prompt context when no match survives.
	NoDocumentsContext = "No documents are available yet to answer this question."

	// NoMatchesAnswer is returned instead of calling the answer generator.
	NoMatchesAnswer = "No relevant matches were found in the uploaded documents for that query."
)

// SearchRequest is one question against the corpus.
type SearchRequest struct {
	// Question is the free-text user question.
	Question string

	// OperationID restricts the search to one operation when set.
	OperationID string

	// Mode is the relevance policy; empty means strict.
	Mode SearchMode
}

// SearchMatch is a ranked, transient projection of a Document.
// Context, Score, MatchedTokens, StorageURL and CreatedAt are internal.
type SearchMatch struct {
	OperationID  string
	DocumentID   string
	FileName     string
	MIMEType     string
	ThumbnailURL string
	StorageURL   string
	CreatedAt    time.Time

	// OperationCreatedAt breaks ties between documents uploaded together.
	OperationCreatedAt time.Time

	Score         int
	MatchedTokens int
	MatchReason   MatchReason

	// Context is the bounded text block handed to the answer generator.
	Context string

	// Snippet is the evidence window; empty when the document has no text.
	Snippet string
}

// PublicMatch is the end-user facing projection of a SearchMatch.
type PublicMatch struct {
	OperationID  string      `json:"operationId"`
	DocumentID   string      `json:"documentId"`
	FileName     string      `json:"fileName"`
	MIMEType     string      `json:"mimeType"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	MatchReason  MatchReason `json:"matchReason"`
	Snippet      string      `json:"snippet,omitempty"`
}

// Public strips the internal-only fields.
func (m *SearchMatch) Public() PublicMatch {
	return PublicMatch{
		OperationID:  m.OperationID,
		DocumentID:   m.DocumentID,
		FileName:     m.FileName,
		MIMEType:     m.MIMEType,
		ThumbnailURL: m.ThumbnailURL,
		MatchReason:  m.MatchReason,
		Snippet:      m.Snippet,
	}
}

// PublicMatches projects a ranked list.
func PublicMatches(matches []SearchMatch) []PublicMatch {
	out := make([]PublicMatch, len(matches))
	for i := range matches {
		out[i] = matches[i].Public()
	}
	return out
}

// SearchResult is the outcome of one search.
type SearchResult struct {
	// Matches holds 0..MaxMatches entries, best first.
	Matches []SearchMatch

	// Context is the prompt context, or NoDocumentsContext.
	Context string
}

// HasMatches reports whether anything relevant was found.
func (r *SearchResult) HasMatches() bool {
	return len(r.Matches) > 0
}

// MaxSelectedMatches is the hard ceiling on matches returned by a search.
const MaxSelectedMatches = 8

// SelectionPolicy holds the relevance-selector constants.
// The strict thresholds are empirical; tune them here, not in code.
type SelectionPolicy struct {
	// MaxMatches caps the result in every mode. Values outside
	// 1..MaxSelectedMatches mean MaxSelectedMatches.
	MaxMatches int

	// ScoreSlack is how far below the best score strict mode still accepts.
	ScoreSlack int

	// TokenSlack is how many fewer matched tokens strict mode still accepts.
	TokenSlack int

	// MinScore is the strict-mode score floor.
	MinScore int

	// MinTokens is the strict-mode matched-token floor.
	MinTokens int
}

// Limit returns the effective match cap.
func (p SelectionPolicy) Limit() int {
	if p.MaxMatches <= 0 || p.MaxMatches > MaxSelectedMatches {
		return MaxSelectedMatches
	}
	return p.MaxMatches
}

// DefaultSelectionPolicy returns the shipped thresholds.
func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{
		MaxMatches: MaxSelectedMatches,
		ScoreSlack: 2,
		TokenSlack: 1,
		MinScore:   2,
		MinTokens:  1,
	}
}

// AnswerSource says where an answer text came from.
type AnswerSource string

// Answer sources.
const (
	AnswerSourceLLM      AnswerSource = "llm"
	AnswerSourceFallback AnswerSource = "fallback"
	AnswerSourceNoMatch  AnswerSource = "no_match"
)

// Answer is what the assistant returns to end users.
type Answer struct {
	Text    string        `json:"answer"`
	Source  AnswerSource  `json:"source"`
	Matches []PublicMatch `json:"matches"`
}
