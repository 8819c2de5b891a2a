package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/megafile/internal/core/domain"
)

func newTestActions(t *testing.T, storageURL string) (*ResultActionService, *[]string) {
	t.Helper()
	store := memory.NewOperationStore()
	require.NoError(t, store.CreateOperation(context.Background(), &domain.Operation{
		ID:        "op-1",
		Documents: []domain.Document{{ID: "doc-1", FileName: "a.pdf", StorageURL: storageURL}},
	}))

	var calls []string
	service := NewResultActionService(store)
	service.open = func(target string) error {
		calls = append(calls, "open:"+target)
		return nil
	}
	service.copyText = func(text string) error {
		calls = append(calls, "copy:"+text)
		return nil
	}
	return service, &calls
}

func TestResultActionService_OpenDocument(t *testing.T) {
	tests := []struct {
		name       string
		storageURL string
		want       string
	}{
		{"local file", "file:///var/megafile/blobs/a.pdf", "open:/var/megafile/blobs/a.pdf"},
		{"remote", "https://blob.example.com/a.pdf", "open:https://blob.example.com/a.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, calls := newTestActions(t, tt.storageURL)

			err := service.OpenDocument(context.Background(), &domain.PublicMatch{DocumentID: "doc-1"})

			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, *calls)
		})
	}
}

func TestResultActionService_OpenDocument_Errors(t *testing.T) {
	service, calls := newTestActions(t, "data:application/pdf;base64,AAAA")
	ctx := context.Background()

	assert.ErrorIs(t, service.OpenDocument(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.OpenDocument(ctx, &domain.PublicMatch{DocumentID: "doc-1"}), domain.ErrUnsupportedStorage)
	assert.ErrorIs(t, service.OpenDocument(ctx, &domain.PublicMatch{DocumentID: "nope"}), domain.ErrNotFound)
	assert.Empty(t, *calls)
}

func TestResultActionService_CopyToClipboard(t *testing.T) {
	service, calls := newTestActions(t, "")

	require.NoError(t, service.CopyToClipboard(context.Background(), "respuesta"))
	assert.Equal(t, []string{"copy:respuesta"}, *calls)

	assert.ErrorIs(t, service.CopyToClipboard(context.Background(), "  "), domain.ErrInvalidInput)
}
