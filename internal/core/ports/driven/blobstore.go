package driven

import "context"

// BlobStore holds the bytes of uploaded files.
// Storage URLs are opaque to core; each store knows its own schemes.
type BlobStore interface {
	// Put stores data and returns its storage URL.
	Put(ctx context.Context, name, mimeType string, data []byte) (string, error)

	// Get reads the bytes behind a storage URL.
	// Returns domain.ErrUnsupportedStorage for schemes it cannot read.
	Get(ctx context.Context, storageURL string) ([]byte, error)

	// Delete removes the bytes behind a storage URL. Missing blobs are not an error.
	Delete(ctx context.Context, storageURL string) error
}
