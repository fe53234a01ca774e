package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// checkK rejects a negative k the way the services do.
func checkK(k int) error {
	if k < 0 {
		return fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	return nil
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	matches []domain.Match
	err     error
	gotTag  string
	gotText string
	gotK    int
}

func (m *mockQueryService) Query(_ context.Context, tag, text string, k int) ([]domain.Match, error) {
	m.gotTag, m.gotText, m.gotK = tag, text, k
	if err := checkK(k); err != nil {
		return nil, err
	}
	return m.matches, m.err
}

func (m *mockQueryService) Invalidate(_ string) {}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	gotK   int
}

func (m *mockAnswerService) Ask(_ context.Context, _, _ string, k int) (*domain.Answer, error) {
	m.gotK = k
	if err := checkK(k); err != nil {
		return nil, err
	}
	return m.answer, m.err
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	corpora []domain.CorpusSettings
	infos   map[string]*domain.CorpusInfo
	err     error
}

func (m *mockCorpusService) List(_ context.Context) ([]domain.CorpusSettings, error) {
	return m.corpora, m.err
}

func (m *mockCorpusService) Info(_ context.Context, tag string) (*domain.CorpusInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info, ok := m.infos[tag]
	if !ok {
		return nil, domain.ErrCorpusUnavailable
	}
	return info, nil
}
