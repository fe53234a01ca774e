package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

func newService(t *testing.T, url string) *LLMService {
	t.Helper()
	s, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: url})
	require.NoError(t, err)
	return s
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, s.ModelName())
	assert.Equal(t, DefaultBaseURL, s.api.BaseURL())
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or", r.Header.Get("Authorization"))
		assert.Equal(t, "citewise", r.Header.Get("X-Title"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistralai/mistral-7b-instruct", req.Model)
		assert.Equal(t, []chatMessage{
			{Role: "system", Content: "Answer from context."},
			{Role: "user", Content: "How do I cite a statute?"},
		}, req.Messages)
		assert.Equal(t, 256, req.MaxTokens)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)

		_, _ = w.Write([]byte(`{"model":"mistralai/mistral-7b-instruct-v0.3",` +
			`"choices":[{"message":{"role":"assistant","content":"Use Rule 12."},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":812,"completion_tokens":9}}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{
		APIKey:  "sk-or",
		BaseURL: srv.URL,
		Model:   "mistralai/mistral-7b-instruct",
		AppName: "citewise",
	})
	require.NoError(t, err)

	got, err := s.Complete(context.Background(), driven.CompletionRequest{
		System:      "Answer from context.",
		Prompt:      "How do I cite a statute?",
		MaxTokens:   256,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, &driven.Completion{
		Text:         "Use Rule 12.",
		Model:        "mistralai/mistral-7b-instruct-v0.3",
		FinishReason: driven.FinishStop,
		InputTokens:  812,
		OutputTokens: 9,
	}, got)
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Contains(t, raw, "temperature")
		assert.NotContains(t, raw, "max_tokens")
		messages := raw["messages"].([]any)
		assert.Len(t, messages, 1)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"},"finish_reason":"length"}]}`))
	}))
	defer srv.Close()

	got, err := newService(t, srv.URL).Complete(context.Background(), driven.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.True(t, got.Truncated())
	assert.Equal(t, DefaultLLMModel, got.Model)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantIs  error
		wantMsg string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantIs: domain.ErrRateLimited},
		{name: "server error", status: http.StatusServiceUnavailable, body: `overloaded`, wantIs: domain.ErrLLMUnavailable},
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantMsg: "bad key"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantIs: ErrNoChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newService(t, srv.URL).Complete(context.Background(), driven.CompletionRequest{Prompt: "q"})
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestComplete_Unreachable(t *testing.T) {
	_, err := newService(t, "http://127.0.0.1:1").Complete(context.Background(), driven.CompletionRequest{Prompt: "q"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	s := newService(t, srv.URL)
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
