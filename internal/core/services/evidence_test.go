package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

// mockTextLayer serves fixed pages.
type mockTextLayer struct {
	pages []domain.PageText
	err   error
	reads int
}

func (m *mockTextLayer) PlainText(_ []byte) (string, error) { return "", m.err }

func (m *mockTextLayer) Pages(_ []byte) ([]domain.PageText, error) {
	m.reads++
	return m.pages, m.err
}

func word(text string, x float64) domain.TextItem {
	return domain.TextItem{Text: text, Box: domain.Box{X: x, Y: 700, Width: 40, Height: 10}}
}

func seedEvidence(t *testing.T) (*memory.OperationStore, *memory.BlobStore) {
	t.Helper()
	ctx := context.Background()
	store, blobs := memory.NewOperationStore(), memory.NewBlobStore()

	pdfURL, err := blobs.Put(ctx, "factura.pdf", domain.PDFMIMEType, []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, store.CreateOperation(ctx, &domain.Operation{
		ID:        "op-1",
		CreatedAt: corpusTime,
		Documents: []domain.Document{
			{ID: "doc-pdf", FileName: "factura.pdf", MIMEType: domain.PDFMIMEType, StorageURL: pdfURL, CreatedAt: corpusTime},
			{ID: "doc-img", FileName: "cheque.jpg", MIMEType: "image/jpeg", StorageURL: "data:image/jpeg;base64,AAAA", CreatedAt: corpusTime},
		},
	}))
	require.NoError(t, store.SaveExtraction(ctx, "doc-pdf", &domain.ExtractionResult{Text: "Factura número 018 por un monto de 45000 pesos"}))
	require.NoError(t, store.SaveExtraction(ctx, "doc-img", &domain.ExtractionResult{Fields: map[string]any{"banco": "Santander"}}))
	return store, blobs
}

func TestEvidenceService_PDFHighlights(t *testing.T) {
	store, blobs := seedEvidence(t)
	reader := &mockTextLayer{pages: []domain.PageText{
		{Number: 1, Items: []domain.TextItem{word("Resumen", 10)}},
		{Number: 2, Items: []domain.TextItem{word("Monto:", 10), word("45000", 60), word("pesos", 110)}},
	}}
	service := NewEvidenceService(store, blobs, reader, domain.DefaultHighlightLimits())

	result, err := service.Highlights(context.Background(), "doc-pdf", "monto 45000")

	require.NoError(t, err)
	assert.Equal(t, "doc-pdf", result.DocumentID)
	assert.Contains(t, result.Snippet, "monto de 45000")
	require.Len(t, result.Pages, 1)
	assert.Equal(t, 2, result.Pages[0].Page)
	assert.Len(t, result.Pages[0].Boxes, 2)
}

func TestEvidenceService_ImageUsesFieldsSnippet(t *testing.T) {
	store, blobs := seedEvidence(t)
	reader := &mockTextLayer{}
	service := NewEvidenceService(store, blobs, reader, domain.DefaultHighlightLimits())

	result, err := service.Highlights(context.Background(), "doc-img", "banco santander")

	require.NoError(t, err)
	assert.Contains(t, result.Snippet, "Santander")
	assert.Empty(t, result.Pages)
	assert.Equal(t, 0, reader.reads)
}

func TestEvidenceService_UnreadableTextLayer(t *testing.T) {
	store, blobs := seedEvidence(t)
	service := NewEvidenceService(store, blobs, &mockTextLayer{err: domain.ErrNotPDF}, domain.DefaultHighlightLimits())

	result, err := service.Highlights(context.Background(), "doc-pdf", "monto")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Snippet)
	assert.Empty(t, result.Pages)
}

func TestEvidenceService_Limits(t *testing.T) {
	store, blobs := seedEvidence(t)
	reader := &mockTextLayer{pages: []domain.PageText{
		{Number: 1, Items: []domain.TextItem{word("monto", 10), word("monto", 60), word("monto", 110)}},
	}}
	service := NewEvidenceService(store, blobs, reader, domain.DefaultHighlightLimits())
	service.UpdateLimits(domain.HighlightLimits{MaxBoxesPerPage: 2, MaxPages: 1})

	result, err := service.Highlights(context.Background(), "doc-pdf", "monto")

	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Len(t, result.Pages[0].Boxes, 2)
}

func TestEvidenceService_NotFound(t *testing.T) {
	store, blobs := seedEvidence(t)
	service := NewEvidenceService(store, blobs, nil, domain.DefaultHighlightLimits())

	_, err := service.Highlights(context.Background(), "missing", "monto")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
