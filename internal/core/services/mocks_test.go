package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// mockEmbedder maps texts to vectors by keyword: each dimension counts one
// keyword. Unknown texts embed as the first keyword.
type mockEmbedder struct {
	mu         sync.Mutex
	keywords   []string
	model      string
	err        error
	embedCalls int
	batchCalls int
	batchSizes []int
	closed     bool
}

func newMockEmbedder(keywords ...string) *mockEmbedder {
	return &mockEmbedder{keywords: keywords, model: "mock-embed"}
}

func (m *mockEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(m.keywords))
	hit := false
	for i, kw := range m.keywords {
		n := strings.Count(lower, kw)
		v[i] = float32(n)
		hit = hit || n > 0
	}
	if !hit && len(v) > 0 {
		v[0] = 1
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.keywords) }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error {
	m.closed = true
	return nil
}

// mockPageReader implements driven.PageReaderRegistry with fixed pages.
type mockPageReader struct {
	pages []domain.Page
	err   error
	paths []string
}

func (m *mockPageReader) ReadPages(_ context.Context, path string) ([]domain.Page, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

func (m *mockPageReader) Register(_ driven.PageReader) {}

func (m *mockPageReader) Extensions() []string { return []string{".txt"} }

// mockPromptStore renders fixed text/template sources.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Answer with citations from {{.Corpus}}.",
		driven.PromptAnswerUser:   "Context:\n{{.Context}}\n\nQuestion: {{.Question}}",
	}}
}

func (m *mockPromptStore) Render(name string, data any) (string, error) {
	src, ok := m.prompts[name]
	if !ok {
		return "", errors.New("unknown prompt " + name)
	}
	t, err := template.New(name).Parse(src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (m *mockPromptStore) Reload() {}

// mockLLM records completion requests.
type mockLLM struct {
	model  string
	reply  string
	finish string
	err    error
	req    driven.CompletionRequest
	closed bool
}

func (m *mockLLM) Complete(_ context.Context, req driven.CompletionRequest) (*driven.Completion, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &driven.Completion{Text: m.reply, Model: m.model, FinishReason: m.finish, InputTokens: 10, OutputTokens: 5}, nil
}

func (m *mockLLM) ModelName() string            { return m.model }
func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error {
	m.closed = true
	return nil
}

// recordingInvalidator records invalidated tags.
type recordingInvalidator struct {
	tags []string
}

func (r *recordingInvalidator) Invalidate(tag string) {
	r.tags = append(r.tags, tag)
}
