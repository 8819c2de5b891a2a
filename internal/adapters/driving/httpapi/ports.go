// Package httpapi serves the megafile REST API with gin.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: search and operation services are required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Search    driving.SearchService
	Assistant driving.AssistantService
	Operation driving.OperationService
	Evidence  driving.EvidenceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil || p.Operation == nil {
		return ErrMissingService
	}
	return nil
}
