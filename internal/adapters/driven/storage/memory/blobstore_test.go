package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

func TestBlobStore_PutGetDelete(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()
	data := []byte("%PDF-1.4")

	url, err := store.Put(ctx, "factura.pdf", domain.PDFMIMEType, data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, blobScheme))
	assert.True(t, strings.HasSuffix(url, "/factura.pdf"))
	assert.Equal(t, 1, store.Len())

	data[0] = 'X'
	got, err := store.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got), "stored bytes are a copy")

	got[0] = 'Y'
	again, err := store.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(again))

	require.NoError(t, store.Delete(ctx, url))
	assert.Equal(t, 0, store.Len())
	_, err = store.Get(ctx, url)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_ForeignURL(t *testing.T) {
	store := NewBlobStore()

	_, err := store.Get(context.Background(), "file:///tmp/a.pdf")

	assert.ErrorIs(t, err, domain.ErrUnsupportedStorage)
}
