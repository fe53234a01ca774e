package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// llmRecorder is an LLMFactory that records the settings it was given.
type llmRecorder struct {
	llm      *mockLLM
	err      error
	settings []domain.LLMSettings
}

func (r *llmRecorder) factory(settings domain.LLMSettings) (driven.LLMService, error) {
	r.settings = append(r.settings, settings)
	if r.err != nil {
		return nil, r.err
	}
	r.llm.model = settings.Model
	return r.llm, nil
}

func newAnswerFixture(t *testing.T) (*AnswerService, *pipeline, *llmRecorder) {
	t.Helper()
	p := builtPipeline(t)
	require.NoError(t, p.config.Set("llm.provider", "openai"))
	require.NoError(t, p.config.Set("llm.api_key", "sk-test"))

	rec := &llmRecorder{llm: &mockLLM{reply: "  Cite the official code [2].  "}}
	svc := NewAnswerService(p.query, p.settings, newMockPromptStore(), rec.factory)
	return svc, p, rec
}

func TestAnswerService_Ask(t *testing.T) {
	svc, _, rec := newAnswerFixture(t)

	answer, err := svc.Ask(context.Background(), "bluebook", " How are statutes cited? ", 2)
	require.NoError(t, err)

	assert.Equal(t, "How are statutes cited?", answer.Question)
	assert.Equal(t, "bluebook", answer.Tag)
	assert.Equal(t, "Cite the official code [2].", answer.Text)
	assert.Equal(t, "meta-llama/llama-4-scout:free", answer.Model)
	assert.Len(t, answer.Matches, 2)
	assert.True(t, rec.llm.closed)

	require.Len(t, rec.settings, 1)
	assert.Equal(t, "meta-llama/llama-4-scout:free", rec.settings[0].Model, "corpus model overrides llm.model")
	assert.Equal(t, 1024, rec.llm.req.MaxTokens)
	assert.InDelta(t, 0.4, rec.llm.req.Temperature, 1e-9)

	assert.Equal(t, "Answer with citations from bluebook.", rec.llm.req.System)
	assert.Contains(t, rec.llm.req.Prompt, "[1] (Section: "+casesRule+", Page 2) Statutes are cited")
	assert.Contains(t, rec.llm.req.Prompt, "[2] (Section: "+statutesRule+", Page 2) "+statutesRule)
	assert.Contains(t, rec.llm.req.Prompt, "Question: How are statutes cited?")
}

func TestAnswerService_Ask_TruncatedReplyIsReturned(t *testing.T) {
	svc, _, rec := newAnswerFixture(t)
	rec.llm.finish = driven.FinishLength

	answer, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	require.NoError(t, err)
	assert.Equal(t, "Cite the official code [2].", answer.Text)
}

func TestAnswerService_Ask_CorpusWithoutModelUsesDefault(t *testing.T) {
	svc, p, rec := newAnswerFixture(t)
	require.NoError(t, p.config.Set("corpora.bluebook.llm_model", ""))
	require.NoError(t, p.config.Set("llm.model", "gpt-4o"))

	_, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", rec.settings[0].Model)
}

func TestAnswerService_Ask_CorpusWithoutModelOnOpenRouter(t *testing.T) {
	svc, p, rec := newAnswerFixture(t)
	require.NoError(t, p.config.Set("corpora.bluebook.llm_model", ""))
	require.NoError(t, p.config.Set("llm.base_url", OpenRouterBaseURL))

	answer, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackLLMModel, rec.settings[0].Model)
	assert.Equal(t, domain.FallbackLLMModel, answer.Model)
}

func TestAnswerService_Ask_LLMUnavailableFailsFirst(t *testing.T) {
	svc, p, rec := newAnswerFixture(t)
	rec.err = domain.ErrLLMUnavailable

	_, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Zero(t, p.embedder.embedCalls)
}

func TestAnswerService_Ask_GenerationError(t *testing.T) {
	svc, _, rec := newAnswerFixture(t)
	rec.llm.err = domain.ErrRateLimited

	_, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, rec.llm.closed)
}

func TestAnswerService_Ask_RetrievalError(t *testing.T) {
	svc, p, _ := newAnswerFixture(t)
	p.embedder.model = "different"

	_, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestAnswerService_Ask_MissingPrompt(t *testing.T) {
	svc, _, _ := newAnswerFixture(t)
	prompts := newMockPromptStore()
	delete(prompts.prompts, driven.PromptAnswerUser)
	svc.prompts = prompts

	_, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown prompt "+driven.PromptAnswerUser)
}

func TestAnswerService_Ask_PromptRenderError(t *testing.T) {
	svc, _, rec := newAnswerFixture(t)
	prompts := newMockPromptStore()
	prompts.prompts[driven.PromptAnswerUser] = "{{.Chapter}}"
	svc.prompts = prompts

	_, err := svc.Ask(context.Background(), "bluebook", "cases", 1)
	require.Error(t, err)
	assert.Empty(t, rec.llm.req.Prompt, "no request is sent when a prompt fails")
}

func TestAnswerService_Ask_InvalidInput(t *testing.T) {
	svc, _, _ := newAnswerFixture(t)

	_, err := svc.Ask(context.Background(), "bluebook", "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ask(context.Background(), "chicago", "cases", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownCorpus)
}

func TestFormatContext(t *testing.T) {
	matches := []domain.Match{
		{Score: 0.9, Text: "Case names are italicised.", Section: "Rule 10", Page: 87},
		{Score: 0.8, Text: "Use the official reporter.", Section: "Rule 10.3", Page: 90},
	}

	assert.Equal(t,
		"[1] (Section: Rule 10, Page 87) Case names are italicised.\n\n"+
			"[2] (Section: Rule 10.3, Page 90) Use the official reporter.",
		FormatContext(matches))
	assert.Empty(t, FormatContext(nil))
}

func TestLazyEmbedder(t *testing.T) {
	calls := 0
	embedder := newMockEmbedder("a")
	lazy := NewLazyEmbedder(func() (driven.EmbeddingService, error) {
		calls++
		return embedder, nil
	})

	for i := 0; i < 3; i++ {
		got, err := lazy.Embedder()
		require.NoError(t, err)
		assert.Same(t, embedder, got)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, lazy.Close())
	assert.True(t, embedder.closed)
}

func TestLazyEmbedder_ErrorIsSticky(t *testing.T) {
	calls := 0
	lazy := NewLazyEmbedder(func() (driven.EmbeddingService, error) {
		calls++
		return nil, errors.New("boom")
	})

	_, err1 := lazy.Embedder()
	_, err2 := lazy.Embedder()
	assert.EqualError(t, err1, "boom")
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, calls)
	assert.NoError(t, lazy.Close())
}
