package mcp

import (
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query ranks corpus passages against a query.
	Query driving.QueryService

	// Answer generates cited answers. Optional: the ask_question tool is
	// only registered when it is set.
	Answer driving.AnswerService

	// Corpus reports configured corpora. Optional.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
