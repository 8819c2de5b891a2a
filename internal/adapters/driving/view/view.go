// Package view holds the JSON projections of operations and documents
// shared by the HTTP and MCP adapters.
package view

import (
	"time"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// Document is the JSON shape of a document.
type Document struct {
	ID              string         `json:"id"`
	OperationID     string         `json:"operationId"`
	FileName        string         `json:"fileName"`
	MIMEType        string         `json:"mimeType"`
	StorageURL      string         `json:"storageUrl,omitempty"`
	ThumbnailURL    string         `json:"thumbnailUrl"`
	ExtractedText   *string        `json:"extractedText"`
	ExtractedFields map[string]any `json:"extractedFields"`
	Pending         bool           `json:"pending"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Operation is the JSON shape of an operation.
type Operation struct {
	ID            string     `json:"id"`
	ClientName    string     `json:"clientName"`
	ClientID      string     `json:"clientId"`
	AISummary     string     `json:"aiSummary"`
	CreatedAt     time.Time  `json:"createdAt"`
	DocumentCount int        `json:"documentCount"`
	Documents     []Document `json:"documents,omitempty"`
}

// NewDocument projects a document. Inline data: URLs are dropped because
// they repeat the whole file.
func NewDocument(d *domain.Document) Document {
	v := Document{
		ID:              d.ID,
		OperationID:     d.OperationID,
		FileName:        d.FileName,
		MIMEType:        d.MIMEType,
		StorageURL:      d.StorageURL,
		ThumbnailURL:    d.ThumbnailURL,
		ExtractedText:   d.ExtractedText,
		ExtractedFields: d.ExtractedFields,
		Pending:         d.IsPending(),
		CreatedAt:       d.CreatedAt,
	}
	if isInline(v.StorageURL) {
		v.StorageURL = ""
	}
	if isInline(v.ThumbnailURL) {
		v.ThumbnailURL = ""
	}
	return v
}

// NewOperation projects an operation. Documents are included only when
// withDocuments is set.
func NewOperation(op *domain.Operation, withDocuments bool) Operation {
	v := Operation{
		ID:            op.ID,
		ClientName:    op.ClientName,
		ClientID:      op.ClientID,
		AISummary:     op.AISummary,
		CreatedAt:     op.CreatedAt,
		DocumentCount: len(op.Documents),
	}
	if withDocuments {
		v.Documents = make([]Document, len(op.Documents))
		for i := range op.Documents {
			v.Documents[i] = NewDocument(&op.Documents[i])
		}
	}
	return v
}

// NewOperations projects a list without documents.
func NewOperations(ops []domain.Operation) []Operation {
	out := make([]Operation, len(ops))
	for i := range ops {
		out[i] = NewOperation(&ops[i], false)
	}
	return out
}

func isInline(u string) bool {
	return len(u) >= 5 && u[:5] == "data:"
}
