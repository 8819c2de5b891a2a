package domain

import (
	"strings"
	"time"
)

// PDFMIMEType is the MIME type of documents with a text layer.
const PDFMIMEType = "application/pdf"

// PDFPlaceholderThumbnail is shown for documents that are not images.
const PDFPlaceholderThumbnail = "/pdf-placeholder.svg"

// Summary texts written by the extraction pipeline.
const (
	SummaryProcessing   = "AI processing in progress..."
	SummaryUnavailable  = "No extraction available"
	DefaultMIMEType     = "application/octet-stream"
	MinQuestionLength   = 3
	MaxDocumentsPerCall = 50
)

// Operation groups a client's documents.
// It exclusively owns its Documents: deleting it deletes them.
type Operation struct {
	// ID is the unique identifier for the operation.
	ID string

	// ClientName is the display name of the client.
	ClientName string

	// ClientID is the client identification number (RUT, passport...).
	// It is free text and may mix digits, letters, dots and dashes.
	ClientID string

	// AISummary is the AI-generated summary, rebuilt after each extraction.
	AISummary string

	// CreatedAt is when the operation was submitted.
	CreatedAt time.Time

	// Documents belongs to this operation, newest first when loaded for search.
	Documents []Document
}

// Document is one uploaded file.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OperationID links to the owning Operation.
	OperationID string

	// FileName is the original upload filename.
	FileName string

	// MIMEType is the upload content type.
	MIMEType string

	// StorageURL points at the stored bytes (file://, data:, http(s)://).
	StorageURL string

	// ThumbnailURL is an image URL or the PDF placeholder.
	ThumbnailURL string

	// ExtractedText is nil until the extraction pipeline runs.
	ExtractedText *string

	// ExtractedFields is nil until the extraction pipeline runs.
	ExtractedFields map[string]any

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time
}

// IsPending reports whether the document has never been extracted.
func (d *Document) IsPending() bool {
	return d.ExtractedText == nil && d.ExtractedFields == nil
}

// IsPDF reports whether the document carries a PDF text layer.
func (d *Document) IsPDF() bool {
	return strings.EqualFold(d.MIMEType, PDFMIMEType)
}

// IsImage reports whether the document is an image upload.
func (d *Document) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(d.MIMEType), "image/")
}

// Text returns the extracted text or an empty string.
func (d *Document) Text() string {
	if d.ExtractedText == nil {
		return ""
	}
	return *d.ExtractedText
}

// ThumbnailFor picks the thumbnail for a freshly stored upload.
func ThumbnailFor(mimeType, storageURL string) string {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return storageURL
	}
	return PDFPlaceholderThumbnail
}

// Upload is a file submitted with a new operation.
type Upload struct {
	FileName string
	MIMEType string
	Data     []byte

	// Thumbnail is an optional client-rendered data:image/ URL.
	Thumbnail string
}

// CreateOperationRequest carries a new operation submission.
type CreateOperationRequest struct {
	ClientName string
	ClientID   string
	Uploads    []Upload
}

// Validate checks the mandatory fields of a submission.
func (r *CreateOperationRequest) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" || strings.TrimSpace(r.ClientID) == "" {
		return ErrInvalidInput
	}
	if len(r.Uploads) == 0 || len(r.Uploads) > MaxDocumentsPerCall {
		return ErrInvalidInput
	}
	for i := range r.Uploads {
		if strings.TrimSpace(r.Uploads[i].FileName) == "" {
			return ErrInvalidInput
		}
	}
	return nil
}
