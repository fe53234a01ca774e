package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoQueryService indicates that no query service was provided.
	ErrNoQueryService = errors.New("query service is required")

	// ErrNoAnswerService indicates that asking is unavailable.
	ErrNoAnswerService = errors.New("no LLM configured; see 'citewise settings'")

	// ErrNoCorpus indicates that no corpus was selected.
	ErrNoCorpus = errors.New("no corpus selected")
)
