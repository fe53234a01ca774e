// Package tui provides an interactive terminal user interface for citewise.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query ranks corpus passages against a query.
	Query driving.QueryService

	// Corpus lists configured corpora.
	Corpus driving.CorpusService

	// Answer generates cited answers. Optional: without it the ask key
	// reports that no LLM is configured.
	Answer driving.AnswerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Corpus == nil {
		return ErrMissingCorpusService
	}
	return nil
}
