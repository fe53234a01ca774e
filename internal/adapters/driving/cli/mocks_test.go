package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    *domain.AppSettings
	err         error
	set         map[string]string
	unset       map[string]bool
	setErr      error
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	settings := domain.DefaultAppSettings()
	settings.Corpora = domain.DefaultCorpora("private_docs")
	return &mockSettingsService{settings: &settings, set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Unset(key string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.unset == nil {
		m.unset = make(map[string]bool)
	}
	m.unset[key] = true
	return nil
}

func (m *mockSettingsService) Corpus(tag string) (*domain.CorpusSettings, error) {
	cs, ok := m.settings.Corpora[tag]
	if !ok {
		return nil, domain.ErrUnknownCorpus
	}
	return &cs, nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "llm.api_key", "search.top_k"}
}

func (m *mockSettingsService) CheckProviders(_ context.Context) ([]domain.ProviderCheck, error) {
	return []domain.ProviderCheck{
		{Role: domain.RoleEmbedding, Provider: m.settings.Embedding.Provider, Model: m.settings.Embedding.Model, Err: m.validateErr},
		{Role: domain.RoleLLM, Provider: domain.AIProviderOllama, Model: "llama3.2", Latency: 42 * time.Millisecond},
	}, nil
}

// mockBuildService is a mock implementation of driving.BuildService.
type mockBuildService struct {
	err   error
	tags  []string
	calls [][3]string
}

func (m *mockBuildService) Build(_ context.Context, tag, source, output string) (*domain.CorpusInfo, error) {
	m.calls = append(m.calls, [3]string{tag, source, output})
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CorpusInfo{Tag: tag, Path: output, Model: "hashing-v1", Dimensions: 384, PassageCount: 12}, nil
}

func (m *mockBuildService) BuildTag(_ context.Context, tag string) (*domain.CorpusInfo, error) {
	m.tags = append(m.tags, tag)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CorpusInfo{
		Tag:          tag,
		Path:         "private_docs/" + tag + ".corpus.db",
		Model:        "hashing-v1",
		Dimensions:   384,
		PassageCount: 412,
	}, nil
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
	return m.matches, m.err
}

func (m *mockQueryService) Invalidate(_ string) {}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, tag, question string, _ int) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	a := *m.answer
	a.Tag, a.Question = tag, question
	return &a, nil
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

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	settings *mockSettingsService
	build    *mockBuildService
	query    *mockQueryService
	answer   *mockAnswerService
	corpus   *mockCorpusService
}

var sampleMatches = []domain.Match{
	{Score: 0.8123, Text: "Cite statutes to the current official code.", Section: "Rule 12 Statutes", Page: 120},
	{Score: 0.5, Text: "Case names are italicised in court documents.", Section: "Rule 10 Cases", Page: 87},
}

// setupTestServices installs mock services and returns a cleanup function
// that restores the previous services and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		settings: newMockSettingsService(),
		build:    &mockBuildService{},
		query:    &mockQueryService{matches: sampleMatches},
		answer: &mockAnswerService{answer: &domain.Answer{
			Model:   "mistralai/mistral-7b-instruct",
			Text:    "Cite the official code [1].",
			Matches: sampleMatches[:1],
		}},
		corpus: &mockCorpusService{
			corpora: []domain.CorpusSettings{
				{Tag: "bluebook", Source: "private_docs/bluebook.pdf", Path: "private_docs/bluebook.corpus.db",
					Headings: domain.HeadingStyleBluebook, LLMModel: "mistralai/mistral-7b-instruct"},
				{Tag: "redbook", Source: "private_docs/redbook.pdf", Path: "private_docs/redbook.corpus.db",
					Headings: domain.HeadingStyleRedbook},
			},
			infos: map[string]*domain.CorpusInfo{
				"bluebook": {
					Tag: "bluebook", Path: "private_docs/bluebook.corpus.db", Model: "hashing-v1",
					Dimensions: 384, PassageCount: 412, BuiltAt: time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC),
				},
			},
		},
	}

	prevSettings, prevBuild, prevQuery := settingsService, buildService, queryService
	prevAnswer, prevCorpus, prevBootstrap := answerService, corpusService, bootstrap
	prevWatch := watchConfig

	SetServices(&Services{
		Settings: ts.settings,
		Build:    ts.build,
		Query:    ts.query,
		Answer:   ts.answer,
		Corpus:   ts.corpus,
	})
	bootstrap = nil

	return ts, func() {
		settingsService, buildService, queryService = prevSettings, prevBuild, prevQuery
		answerService, corpusService, bootstrap = prevAnswer, prevCorpus, prevBootstrap
		closeServices, watchConfig = nil, prevWatch
		resetFlags()
	}
}

// resetFlags restores package-level flag variables, which cobra keeps
// between executions of the same command tree.
func resetFlags() {
	verbose, configDir = false, ""
	buildSource, buildOutput = "", ""
	queryK, queryJSON = 0, false
	askK, askJSON = 0, false
	corpusJSON = false
	settingsCheck = false
}
