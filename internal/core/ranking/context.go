package ranking

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

const contextSeparator = "\n\n---\n\n"

// ContextBlock renders the prompt block of one document.
func ContextBlock(op *domain.CandidateOperation, doc *domain.CandidateDocument) string {
	return fmt.Sprintf("OPERATION=%s\nCLIENT=%s\nCLIENT_ID=%s\nDOCUMENT=%s:%s\nFIELDS=%s\nTEXT=%s",
		op.ID, op.ClientName, op.ClientID,
		doc.Document.ID, doc.Document.FileName,
		doc.FieldsJSON, doc.Text)
}

// BuildContext joins the context blocks of the first k matches.
// Without matches it returns domain.NoDocumentsContext.
func BuildContext(matches []domain.SearchMatch, k int) string {
	if k <= 0 {
		k = domain.DefaultMaxContextMatches
	}
	blocks := make([]string, 0, min(k, len(matches)))
	for i := 0; i < len(matches) && i < k; i++ {
		blocks = append(blocks, matches[i].Context)
	}
	if len(blocks) == 0 {
		return domain.NoDocumentsContext
	}
	return strings.Join(blocks, contextSeparator)
}
