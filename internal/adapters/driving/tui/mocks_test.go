package tui

import (
	"context"
	"time"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
)

var _ driving.QueryService = (*MockQueryService)(nil)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	QueryFunc func(ctx context.Context, tag, text string, k int) ([]domain.Match, error)
}

func (m *MockQueryService) Query(ctx context.Context, tag, text string, k int) ([]domain.Match, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, tag, text, k)
	}
	return []domain.Match{}, nil
}

func (m *MockQueryService) Invalidate(_ string) {}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AskFunc func(ctx context.Context, tag, question string, k int) (*domain.Answer, error)
}

func (m *MockAnswerService) Ask(ctx context.Context, tag, question string, k int) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, tag, question, k)
	}
	return &domain.Answer{Question: question, Tag: tag, Model: "mock", Text: "answer"}, nil
}

// MockCorpusService implements driving.CorpusService for testing.
type MockCorpusService struct {
	Corpora []domain.CorpusSettings
	Infos   map[string]*domain.CorpusInfo
}

func (m *MockCorpusService) List(_ context.Context) ([]domain.CorpusSettings, error) {
	return m.Corpora, nil
}

func (m *MockCorpusService) Info(_ context.Context, tag string) (*domain.CorpusInfo, error) {
	if info, ok := m.Infos[tag]; ok {
		return info, nil
	}
	return nil, domain.ErrCorpusUnavailable
}

func newMockCorpusService() *MockCorpusService {
	return &MockCorpusService{
		Corpora: []domain.CorpusSettings{
			{Tag: "bluebook", Source: "/manuals/bluebook.pdf", Path: "/manuals/bluebook.corpus.db"},
			{Tag: "redbook", Source: "/manuals/redbook.pdf", Path: "/manuals/redbook.corpus.db"},
		},
		Infos: map[string]*domain.CorpusInfo{
			"bluebook": {
				Tag: "bluebook", Model: "hashing-v1", Dimensions: 384, PassageCount: 412,
				BuiltAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func testMatches() []domain.Match {
	return []domain.Match{
		{Score: 0.8123, Text: "Cite statutes to the current official code.", Section: "Rule 12 Statutes", Page: 120},
		{Score: 0.5, Text: "Case names are italicised in court documents.", Section: "Rule 10 Cases", Page: 87},
	}
}
