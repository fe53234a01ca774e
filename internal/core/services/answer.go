package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
	"github.com/custodia-labs/citewise/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService generates cited answers from retrieved passages.
type AnswerService struct {
	query    driving.QueryService
	settings driving.SettingsService
	prompts  driven.PromptStore
	llms     driven.LLMFactory
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	query driving.QueryService,
	settings driving.SettingsService,
	prompts driven.PromptStore,
	llms driven.LLMFactory,
) *AnswerService {
	return &AnswerService{
		query:    query,
		settings: settings,
		prompts:  prompts,
		llms:     llms,
	}
}

// Ask retrieves k passages from tag and asks the corpus's model to answer
// question from them. The LLM is resolved first so a missing provider
// fails before any embedding work.
func (s *AnswerService) Ask(ctx context.Context, tag, question string, k int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	cs, err := s.settings.Corpus(tag)
	if err != nil {
		return nil, err
	}

	llm, err := s.llms(settings.LLM.WithModel(cs.LLMModel))
	if err != nil {
		return nil, err
	}
	defer llm.Close()

	matches, err := s.query.Query(ctx, tag, question, k)
	if err != nil {
		return nil, err
	}

	req, err := s.buildRequest(tag, question, matches)
	if err != nil {
		return nil, err
	}
	req.MaxTokens = settings.LLM.MaxTokens
	req.Temperature = settings.LLM.Temperature

	logger.Section("Answer " + tag)
	logger.Debug("Model: %s, context passages: %d", llm.ModelName(), len(matches))

	stop := logger.Timed("generate answer")
	completion, err := llm.Complete(ctx, req)
	stop()
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	logger.Debug("Tokens: %d in, %d out", completion.InputTokens, completion.OutputTokens)
	if completion.Truncated() {
		logger.Warn("answer from %s hit the %d token limit and may be cut off", completion.Model, req.MaxTokens)
	}

	model := completion.Model
	if model == "" {
		model = llm.ModelName()
	}
	return &domain.Answer{
		Question: question,
		Tag:      tag,
		Model:    model,
		Text:     strings.TrimSpace(completion.Text),
		Matches:  matches,
	}, nil
}

// buildRequest renders the system and user prompts.
func (s *AnswerService) buildRequest(tag, question string, matches []domain.Match) (driven.CompletionRequest, error) {
	data := driven.AnswerPrompt{
		Corpus:   tag,
		Question: question,
		Context:  FormatContext(matches),
		Passages: len(matches),
	}
	system, err := s.prompts.Render(driven.PromptAnswerSystem, data)
	if err != nil {
		return driven.CompletionRequest{}, err
	}
	user, err := s.prompts.Render(driven.PromptAnswerUser, data)
	if err != nil {
		return driven.CompletionRequest{}, err
	}
	return driven.CompletionRequest{System: system, Prompt: user}, nil
}

// FormatContext numbers matches for citation, one per paragraph:
//
//	[1] (Section: Rule 10, Page 87) Case names ...
func FormatContext(matches []domain.Match) string {
	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] (Section: %s, Page %d) %s", i+1, m.Section, m.Page, m.Text)
	}
	return sb.String()
}
