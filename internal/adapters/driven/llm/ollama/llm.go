// Package ollama generates answers with a local Ollama server.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/citewise/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the Ollama adapter. Zero values take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/chat without streaming.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
}

type chatResponse struct {
	Model           string  `json:"model"`
	Message         message `json:"message"`
	DoneReason      string  `json:"done_reason"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

// NewLLMService creates an Ollama adapter. Ollama needs no key, so this cannot fail.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		api: apiclient.New(apiclient.Config{
			Provider:    "ollama",
			BaseURL:     cfg.BaseURL,
			Timeout:     cfg.Timeout,
			Unavailable: domain.ErrLLMUnavailable,
		}),
		model: cfg.Model,
	}
}

// Complete runs one chat turn.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	body := chatRequest{
		Model:    s.model,
		Messages: make([]message, 0, 2),
		Options: chatOptions{
			NumPredict:  req.MaxTokens,
			Temperature: &req.Temperature,
		},
	}
	if req.System != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: req.Prompt})

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/api/chat", body, &resp); err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = s.model
	}
	finish := driven.FinishStop
	if resp.DoneReason == "length" {
		finish = driven.FinishLength
	}
	return &driven.Completion{
		Text:         resp.Message.Content,
		Model:        model,
		FinishReason: finish,
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
	}, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
