// Package mcp provides an MCP (Model Context Protocol) server adapter for megafile.
// It lets AI assistants search the uploaded documents and ask questions about them.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
