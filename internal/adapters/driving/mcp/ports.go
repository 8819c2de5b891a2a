package mcp

import (
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search ranks documents for a question.
	Search driving.SearchService

	// Assistant answers questions; the ask tool is only registered when set.
	Assistant driving.AssistantService

	// Operation exposes operations and documents as resources.
	Operation driving.OperationService

	// Evidence locates a question inside one document.
	Evidence driving.EvidenceService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
