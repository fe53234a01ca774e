package driven

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// LLMService is the narrow text-generation port: prompt in, generated text out.
// Retries, timeouts and transport details stay inside the adapters.
type LLMService interface {
	// Complete sends one system prompt and one user prompt and returns the reply.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// ModelName returns the model requests are sent to.
	ModelName() string

	// Ping checks the provider is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest is a single-turn generation request.
type CompletionRequest struct {
	System string
	Prompt string

	// MaxTokens caps the reply length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature is sent as given, including zero.
	Temperature float64
}

// Finish reasons, normalised across providers.
const (
	FinishStop   = "stop"
	FinishLength = "length"
)

// Completion is a generated reply and its accounting.
type Completion struct {
	Text         string
	Model        string
	FinishReason string
	InputTokens  int
	OutputTokens int
}

// Truncated reports whether the reply was cut off by the token limit.
func (c *Completion) Truncated() bool {
	return c.FinishReason == FinishLength
}

// LLMFactory creates a text-generation service for the given settings.
// The answerer uses it to bind each corpus to its own model.
type LLMFactory func(settings domain.LLMSettings) (LLMService, error)
