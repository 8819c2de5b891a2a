// Package tui provides an interactive terminal user interface for megafile.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Assistant answers chat questions.
	Assistant driving.AssistantService

	// Operation lists and reprocesses operations. Optional.
	Operation driving.OperationService

	// Actions copies snippets and opens documents. Optional.
	Actions driving.ResultActionService

	// Settings supplies the default search mode. Optional.
	Settings driving.SettingsService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
