package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// blobScheme prefixes the storage URLs handed out by BlobStore.
const blobScheme = "mem://"

// BlobStore is an in-memory implementation of driven.BlobStore.
// Data is lost on exit; used for --ephemeral runs and tests.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores a copy of data.
func (s *BlobStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	url := blobScheme + uuid.New().String() + "/" + name

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[url] = append([]byte(nil), data...)
	return url, nil
}

// Get returns a copy of the stored bytes.
func (s *BlobStore) Get(_ context.Context, storageURL string) ([]byte, error) {
	if !strings.HasPrefix(storageURL, blobScheme) {
		return nil, domain.ErrUnsupportedStorage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[storageURL]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes the stored bytes.
func (s *BlobStore) Delete(_ context.Context, storageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, storageURL)
	return nil
}

// Len returns the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
