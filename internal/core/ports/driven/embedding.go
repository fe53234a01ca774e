package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// One instance is created per process and shared by build and query, so
// implementations must be safe for concurrent use.
//
// Implementations may include:
//   - Hashing (built-in, offline, deterministic)
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI-compatible APIs (text-embedding-3-small)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Embed(t) must equal EmbedBatch([t])[0].
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the identity of the embedding model.
	// It is recorded in every corpus built with this service.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
