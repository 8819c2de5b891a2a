package ranking

import (
	"strings"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// Point weights of the additive scorer.
const (
	shortTokenPoints = 1
	longTokenPoints  = 2
	longTokenLength  = 5

	phrasePoints    = 3
	minPhraseLength = 6
	numberPoints    = 4

	clientIDBoost   = 5
	clientNameBoost = 3
	fileNameBoost   = 2
	minBoostWordLen = 3
)

// Query is a question prepared once and scored against every candidate.
type Query struct {
	Question     string
	Normalized   string
	Tokens       []string
	Digits       string
	NumberGroups []string
}

// NewQuery normalizes and tokenizes a question.
func NewQuery(question string) Query {
	return Query{
		Question:     question,
		Normalized:   Normalize(question),
		Tokens:       Tokenize(question),
		Digits:       DigitsOnly(question),
		NumberGroups: NumberGroups(question),
	}
}

// IsEmpty reports whether the question carries no token to match.
func (q Query) IsEmpty() bool {
	return len(q.Tokens) == 0 && len(q.Digits) < MinNumberGroupLength
}

// ScoreResult is the relevance of one document for one query.
type ScoreResult struct {
	Score         int
	MatchedTokens int
	Reason        domain.MatchReason
}

// Score rates a document of an operation against q.
// It never fails: missing text or fields just shrink the haystack.
func Score(op *domain.CandidateOperation, doc *domain.CandidateDocument, q Query) ScoreResult {
	raw := strings.Join([]string{
		op.ClientName,
		op.ClientID,
		op.Summary,
		doc.Document.FileName,
		doc.Text,
		doc.FieldsJSON,
	}, " ")
	haystack := Normalize(raw)

	res := ScoreResult{Reason: domain.MatchReasonContent}

	for _, tok := range q.Tokens {
		if !strings.Contains(haystack, tok) {
			continue
		}
		res.MatchedTokens++
		if len(tok) > longTokenLength {
			res.Score += longTokenPoints
		} else {
			res.Score += shortTokenPoints
		}
	}

	if len(q.Normalized) >= minPhraseLength && strings.Contains(haystack, q.Normalized) {
		res.Score += phrasePoints
		res.Reason = domain.MatchReasonPhrase
	}

	// Checked after the phrase rule so the numeric reason wins.
	if numberMatch(raw, q) {
		res.MatchedTokens++
		res.Score += numberPoints
		res.Reason = domain.MatchReasonNumber
	}

	res.Score += boosts(op, doc, q.Normalized)
	if res.MatchedTokens == 0 {
		res.Score = 0
	}
	return res
}

// numberMatch compares all digits of the question with all digits of the
// document, so separators and spaces inside an identifier are ignored on
// both sides. Questions naming several identifiers fall back to matching
// any one of their per-word groups.
func numberMatch(raw string, q Query) bool {
	if len(q.Digits) < MinNumberGroupLength {
		return false
	}
	if strings.Contains(DigitsOnly(raw), q.Digits) {
		return true
	}
	if len(q.NumberGroups) < 2 {
		return false
	}
	digits := digitProjection(raw)
	for _, group := range q.NumberGroups {
		if strings.Contains(digits, group) {
			return true
		}
	}
	return false
}

func boosts(op *domain.CandidateOperation, doc *domain.CandidateDocument, query string) int {
	if query == "" {
		return 0
	}
	total := 0
	if id := Normalize(op.ClientID); id != "" && strings.Contains(query, id) {
		total += clientIDBoost
	}
	if anyWordIn(Normalize(op.ClientName), query) {
		total += clientNameBoost
	}
	if anyWordIn(Normalize(doc.Document.FileName), query) {
		total += fileNameBoost
	}
	return total
}

func anyWordIn(normalized, query string) bool {
	for _, w := range strings.Split(normalized, " ") {
		if len(w) >= minBoostWordLen && strings.Contains(query, w) {
			return true
		}
	}
	return false
}

// ScoreAll scores every document of every operation in load order.
func ScoreAll(ops []domain.CandidateOperation, q Query) []domain.SearchMatch {
	var out []domain.SearchMatch
	for i := range ops {
		op := &ops[i]
		for j := range op.Documents {
			doc := &op.Documents[j]
			res := Score(op, doc, q)
			out = append(out, domain.SearchMatch{
				OperationID:        op.ID,
				DocumentID:         doc.Document.ID,
				FileName:           doc.Document.FileName,
				MIMEType:           doc.Document.MIMEType,
				ThumbnailURL:       doc.Document.ThumbnailURL,
				StorageURL:         doc.Document.StorageURL,
				CreatedAt:          doc.Document.CreatedAt,
				OperationCreatedAt: op.CreatedAt,
				Score:              res.Score,
				MatchedTokens:      res.MatchedTokens,
				MatchReason:        res.Reason,
				Context:            ContextBlock(op, doc),
			})
		}
	}
	return out
}
