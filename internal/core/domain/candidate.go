package domain

import (
	"encoding/json"
	"time"
	"unicode/utf8"
)

// Default candidate bounds. They trade completeness for bounded latency:
// the search runs inline in a chat turn.
const (
	DefaultMaxOperations     = 80
	DefaultMaxTextChars      = 2200
	DefaultMaxFieldsChars    = 1500
	DefaultMaxSummaryChars   = 1200
	DefaultMaxContextMatches = 4
)

// CandidateQuery bounds the search universe.
type CandidateQuery struct {
	// OperationID loads exactly one operation when set.
	OperationID string

	MaxOperations   int
	MaxTextChars    int
	MaxFieldsChars  int
	MaxSummaryChars int
}

// WithDefaults fills zero bounds.
func (q CandidateQuery) WithDefaults() CandidateQuery {
	if q.MaxOperations <= 0 {
		q.MaxOperations = DefaultMaxOperations
	}
	if q.OperationID != "" {
		q.MaxOperations = 1
	}
	if q.MaxTextChars <= 0 {
		q.MaxTextChars = DefaultMaxTextChars
	}
	if q.MaxFieldsChars <= 0 {
		q.MaxFieldsChars = DefaultMaxFieldsChars
	}
	if q.MaxSummaryChars <= 0 {
		q.MaxSummaryChars = DefaultMaxSummaryChars
	}
	return q
}

// CandidateOperation is an operation loaded for scoring.
// Summary is already truncated.
type CandidateOperation struct {
	ID         string
	ClientName string
	ClientID   string
	Summary    string
	CreatedAt  time.Time
	Documents  []CandidateDocument
}

// CandidateDocument is a document loaded for scoring.
// Text and FieldsJSON are already truncated.
type CandidateDocument struct {
	Document   Document
	Text       string
	FieldsJSON string
}

// NewCandidateDocument truncates a document for scoring.
// fieldsJSON is the serialized extracted fields; empty or invalid input becomes "{}".
func NewCandidateDocument(doc Document, fieldsJSON string, q CandidateQuery) CandidateDocument {
	if fieldsJSON == "" || fieldsJSON == "null" || !json.Valid([]byte(fieldsJSON)) {
		fieldsJSON = "{}"
	}
	return CandidateDocument{
		Document:   doc,
		Text:       TruncateRunes(doc.Text(), q.MaxTextChars),
		FieldsJSON: TruncateRunes(fieldsJSON, q.MaxFieldsChars),
	}
}

// FieldsJSON serializes extracted fields, "{}" when absent or unserializable.
func FieldsJSON(fields map[string]any) string {
	if fields == nil {
		return "{}"
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
