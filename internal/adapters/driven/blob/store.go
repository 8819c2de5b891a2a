// Package blob stores uploaded file bytes.
//
// Files are written under a local directory and addressed with file:// URLs.
// Reads also understand inline data: URLs and remote http(s) URLs, so
// operations imported from other deployments stay readable.
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

const (
	schemeFile = "file://"
	schemeData = "data:"

	// DefaultMaxDownloadBytes caps remote reads.
	DefaultMaxDownloadBytes = 50 << 20

	defaultHTTPTimeout = 30 * time.Second
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store is a directory-backed blob store.
// With an empty directory it falls back to inline data: URLs.
type Store struct {
	dir        string
	httpClient *http.Client
	maxBytes   int64
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the client used for http(s) reads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		s.httpClient = c
	}
}

// WithMaxDownloadBytes caps the size of remote reads.
func WithMaxDownloadBytes(n int64) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// NewStore creates a blob store rooted at dir.
func NewStore(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:        dir,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxBytes:   DefaultMaxDownloadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating blob directory: %w", err)
		}
	}
	return s, nil
}

// Put stores data and returns its storage URL.
func (s *Store) Put(_ context.Context, name, mimeType string, data []byte) (string, error) {
	if s.dir == "" {
		return DataURL(mimeType, data), nil
	}

	fileName := uuid.New().String() + "-" + sanitize(name)
	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving blob path: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Get reads the bytes behind a storage URL.
func (s *Store) Get(ctx context.Context, storageURL string) ([]byte, error) {
	switch {
	case strings.HasPrefix(storageURL, schemeData):
		_, data, err := ParseDataURL(storageURL)
		return data, err
	case strings.HasPrefix(storageURL, schemeFile):
		data, err := os.ReadFile(filePath(storageURL))
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("reading blob: %w", err)
		}
		return data, nil
	case strings.HasPrefix(storageURL, "http://"), strings.HasPrefix(storageURL, "https://"):
		return s.download(ctx, storageURL)
	default:
		return nil, domain.ErrUnsupportedStorage
	}
}

// Delete removes a local blob. Inline and remote blobs are left alone.
func (s *Store) Delete(_ context.Context, storageURL string) error {
	if !strings.HasPrefix(storageURL, schemeFile) {
		return nil
	}
	path := filePath(storageURL)
	if s.dir != "" && !within(s.dir, path) {
		return fmt.Errorf("refusing to delete %s outside the blob directory", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

func (s *Store) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading blob: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("blob exceeds %d bytes", s.maxBytes)
	}
	return data, nil
}

// DataURL encodes data inline.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = domain.DefaultMIMEType
	}
	return schemeData + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL decodes a data: URL into its MIME type and bytes.
// Payloads without ;base64 are percent-decoded.
func ParseDataURL(raw string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(raw, schemeData)
	if !ok {
		return "", nil, domain.ErrUnsupportedStorage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URL", domain.ErrInvalidInput)
	}

	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if mimeType == "" {
		mimeType = domain.DefaultMIMEType
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: bad base64 payload", domain.ErrInvalidInput)
		}
		return mimeType, data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad data URL payload", domain.ErrInvalidInput)
	}
	return mimeType, []byte(decoded), nil
}

func filePath(storageURL string) string {
	if u, err := url.Parse(storageURL); err == nil && u.Path != "" {
		return filepath.FromSlash(u.Path)
	}
	return filepath.FromSlash(strings.TrimPrefix(storageURL, schemeFile))
}

func sanitize(name string) string {
	name = unsafeName.ReplaceAllString(filepath.Base(name), "_")
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}
