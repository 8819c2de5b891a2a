package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnsupportedStorage indicates a storage URL scheme no blob store can read.
	ErrUnsupportedStorage = errors.New("unsupported storage format")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Extraction degrades to text-only and answers fall back to templates.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrAnswerTimeout indicates the answer generator did not reply in time.
	ErrAnswerTimeout = errors.New("answer generation timed out")

	// ErrQueueClosed indicates the extraction queue no longer accepts jobs.
	ErrQueueClosed = errors.New("extraction queue closed")

	// ErrNotPDF indicates an operation that needs a PDF received another MIME type.
	ErrNotPDF = errors.New("document is not a PDF")
)
