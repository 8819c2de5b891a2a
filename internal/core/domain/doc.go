// Package domain defines the core business entities for Megafile.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Operation: A client-scoped folder of uploaded documents
//   - Document: One uploaded file with its AI extraction results
//   - SearchMatch: A ranked projection of a Document for one question
//   - Settings: The explicit configuration object handed to services
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
