package ranking

import (
	"time"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// candidate builds a one-document operation the way the store loads it.
func candidate(opID, clientName, clientID, fileName, text, fieldsJSON string, created time.Time) domain.CandidateOperation {
	doc := domain.Document{
		ID:            opID + "-doc",
		OperationID:   opID,
		FileName:      fileName,
		MIMEType:      domain.PDFMIMEType,
		ThumbnailURL:  domain.PDFPlaceholderThumbnail,
		ExtractedText: strPtr(text),
		CreatedAt:     created,
	}
	q := domain.CandidateQuery{}.WithDefaults()
	return domain.CandidateOperation{
		ID:         opID,
		ClientName: clientName,
		ClientID:   clientID,
		CreatedAt:  created,
		Documents:  []domain.CandidateDocument{domain.NewCandidateDocument(doc, fieldsJSON, q)},
	}
}

func juanPerez() domain.CandidateOperation {
	return candidate("op-juan", "Juan Pérez", "12.345.678-9", "Factura_2026_018.pdf",
		"Factura emitida a RUT 12.345.678-9 por servicios", `{"monto": 45000}`, baseTime)
}

func scoreOne(op domain.CandidateOperation, question string) ScoreResult {
	return Score(&op, &op.Documents[0], NewQuery(question))
}
