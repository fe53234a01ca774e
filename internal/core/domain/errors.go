package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown page reader, heading style or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Corpus Errors.

	// ErrSourceUnavailable indicates the source document is missing or unreadable.
	// A build that hits this error writes nothing.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrCorpusUnavailable indicates a corpus file is missing, truncated or corrupt.
	// Callers must not treat it as an empty result.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrUnknownCorpus indicates no corpus is configured under the requested tag.
	ErrUnknownCorpus = errors.New("unknown corpus")

	// Retrieval Errors.

	// ErrInvalidDimension indicates the query vector and corpus vectors differ in length.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrEmptyCorpus indicates a query ran against a corpus with no passages.
	// It is a valid corpus state, reported distinctly from "fewer than k results".
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrModelMismatch indicates the corpus was embedded with a different model
	// than the one configured for queries.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// Provider Errors.

	// ErrLLMUnavailable indicates the text-generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates a provider rejected a request for exceeding its rate limit.
	ErrRateLimited = errors.New("rate limited")
)
