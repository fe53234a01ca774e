package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchTopK        = "search.top_k"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyEmbedConcurrency  = "embedding.concurrency"
	keyEmbedRateLimit    = "embedding.rate_limit"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMMaxTokens      = "llm.max_tokens"
	keyLLMTemperature    = "llm.temperature"
	corporaPrefix        = "corpora."
	corpusSource         = "source"
	corpusPath           = "path"
	corpusHeadings       = "headings"
	corpusHeadingPattern = "heading_pattern"
	corpusHeadingLabel   = "heading_label"
	corpusLLMModel       = "llm_model"
)

// Environment variables consulted when the config file has no API key.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvLLMAPIKey        = "CITEWISE_LLM_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvEmbeddingAPIKey  = "CITEWISE_EMBEDDING_API_KEY"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint used when only an
// OpenRouter key is available.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// intKeys and floatKeys are parsed from strings by Set.
var (
	intKeys = map[string]bool{
		keySearchTopK:       true,
		keyEmbedDimensions:  true,
		keyEmbedConcurrency: true,
		keyLLMMaxTokens:     true,
	}
	floatKeys = map[string]bool{
		keyEmbedRateLimit: true,
		keyLLMTemperature: true,
	}
	stringKeys = map[string]bool{
		keyEmbedModel:   true,
		keyEmbedBaseURL: true,
		keyEmbedAPIKey:  true,
		keyLLMModel:     true,
		keyLLMBaseURL:   true,
		keyLLMAPIKey:    true,
	}
	corpusFields = map[string]bool{
		corpusSource:         true,
		corpusPath:           true,
		corpusHeadings:       true,
		corpusHeadingPattern: true,
		corpusHeadingLabel:   true,
		corpusLLMModel:       true,
	}
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	probe       driven.ProviderProbe
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// A nil probe disables CheckProviders.
func NewSettingsService(configStore driven.ConfigStore, probe driven.ProviderProbe) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		probe:       probe,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Stored values override defaults; invalid stored values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			TopK: s.getPositiveInt(keySearchTopK, defaults.Search.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:    s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:       s.str(keyEmbedModel),
			BaseURL:     s.str(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.firstNonEmpty(s.str(keyEmbedAPIKey), EnvEmbeddingAPIKey),
			Dimensions:  s.getPositiveInt(keyEmbedDimensions, defaults.Embedding.Dimensions),
			Concurrency: s.getPositiveInt(keyEmbedConcurrency, defaults.Embedding.Concurrency),
			RateLimit:   s.getFloat(keyEmbedRateLimit, defaults.Embedding.RateLimit),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.str(keyLLMModel),
			BaseURL:     s.str(keyLLMBaseURL),
			APIKey:      s.firstNonEmpty(s.str(keyLLMAPIKey), EnvLLMAPIKey, EnvOpenRouterAPIKey),
			MaxTokens:   s.getPositiveInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Corpora: defaults.Corpora,
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = settings.Embedding.Provider.DefaultEmbeddingModel()
	}

	// An OpenRouter key alone is enough to answer questions.
	if settings.LLM.Provider == "" && settings.LLM.APIKey != "" {
		settings.LLM.Provider = domain.AIProviderOpenAI
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = OpenRouterBaseURL
		}
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = settings.LLM.DefaultModel()
	}

	if err := s.loadCorpora(settings.Corpora); err != nil {
		return nil, err
	}

	return settings, nil
}

// Set updates a single setting by its dot-notation key.
// Values are parsed and validated before they are persisted.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch {
	case key == keyEmbedProvider:
		provider := domain.AIProvider(value)
		if !provider.CanEmbed() {
			return fmt.Errorf("%w: provider %q does not support embeddings", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case key == keyLLMProvider:
		provider := domain.AIProvider(value)
		if !provider.CanGenerate() {
			return fmt.Errorf("%w: provider %q does not support text generation", domain.ErrInvalidInput, value)
		}
		return s.configStore.Set(key, value)

	case intKeys[key]:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (key == keySearchTopK && n < 1) {
			return fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, n)

	case floatKeys[key]:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, f)

	case stringKeys[key]:
		return s.configStore.Set(key, value)

	case strings.HasPrefix(key, corporaPrefix):
		return s.setCorpusField(key, value)

	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Unset removes a stored value so the default applies again.
func (s *SettingsService) Unset(key string) error {
	key = strings.TrimSpace(key)
	if !s.isSettable(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Unset(key)
}

func (s *SettingsService) isSettable(key string) bool {
	switch {
	case key == keyEmbedProvider, key == keyLLMProvider:
		return true
	case intKeys[key], floatKeys[key], stringKeys[key]:
		return true
	case strings.HasPrefix(key, corporaPrefix):
		_, field, ok := splitCorpusKey(key)
		return ok && corpusFields[field]
	}
	return false
}

// Corpus returns the settings for tag.
func (s *SettingsService) Corpus(tag string) (*domain.CorpusSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	cs, ok := settings.Corpora[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q (configured: %s)",
			domain.ErrUnknownCorpus, tag, strings.Join(settings.CorpusTags(), ", "))
	}
	return &cs, nil
}

// Keys returns every settable key, sorted. Corpus fields are shown with a
// <tag> placeholder.
func (s *SettingsService) Keys() []string {
	keys := []string{keyEmbedProvider, keyLLMProvider}
	for _, set := range []map[string]bool{intKeys, floatKeys, stringKeys} {
		for k := range set {
			keys = append(keys, k)
		}
	}
	for field := range corpusFields {
		keys = append(keys, corporaPrefix+"<tag>."+field)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// CheckProviders pings the embedding provider and, when one is configured,
// the LLM provider. Probe failures are reported per check, not returned.
func (s *SettingsService) CheckProviders(ctx context.Context) ([]domain.ProviderCheck, error) {
	if s.probe == nil {
		return nil, nil
	}
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	checks := make([]domain.ProviderCheck, 0, 2)
	checks = append(checks, timeCheck(domain.ProviderCheck{
		Role:     domain.RoleEmbedding,
		Provider: settings.Embedding.Provider,
		Model:    settings.Embedding.Model,
	}, func() error {
		return s.probe.ProbeEmbedding(ctx, settings.Embedding)
	}))
	if settings.LLM.IsConfigured() {
		checks = append(checks, timeCheck(domain.ProviderCheck{
			Role:     domain.RoleLLM,
			Provider: settings.LLM.Provider,
			Model:    settings.LLM.Model,
		}, func() error {
			return s.probe.ProbeLLM(ctx, settings.LLM)
		}))
	}
	return checks, nil
}

func timeCheck(check domain.ProviderCheck, probe func() error) domain.ProviderCheck {
	start := time.Now()
	check.Err = probe()
	check.Latency = time.Since(start)
	return check
}

// loadCorpora merges corpora.<tag>.<field> keys into corpora.
// Tags not among the defaults are added.
func (s *SettingsService) loadCorpora(corpora map[string]domain.CorpusSettings) error {
	for _, key := range s.configStore.Keys(corporaPrefix) {
		tag, field, ok := splitCorpusKey(key)
		if !ok {
			continue
		}
		cs, exists := corpora[tag]
		if !exists {
			cs = domain.CorpusSettings{Tag: tag, Headings: domain.HeadingStyleNone}
		}

		value := s.str(key)
		switch field {
		case corpusSource:
			cs.Source = value
		case corpusPath:
			cs.Path = value
		case corpusHeadings:
			if value != "" {
				cs.Headings = domain.HeadingStyle(value)
			}
		case corpusHeadingPattern:
			cs.HeadingPattern = value
		case corpusHeadingLabel:
			cs.HeadingLabel = value
		case corpusLLMModel:
			cs.LLMModel = value
		}
		corpora[tag] = cs
	}

	for tag, cs := range corpora {
		if cs.Source == "" {
			return fmt.Errorf("%w: corpus %q has no source", domain.ErrInvalidInput, tag)
		}
		if cs.Path == "" {
			cs.Path = domain.DefaultCorpusPath(cs.Source)
			corpora[tag] = cs
		}
	}
	return nil
}

// setCorpusField validates and stores one corpora.<tag>.<field> value.
func (s *SettingsService) setCorpusField(key, value string) error {
	tag, field, ok := splitCorpusKey(key)
	if !ok || !corpusFields[field] {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if field == corpusHeadings && !domain.HeadingStyle(value).IsValid() {
		return fmt.Errorf("%w: heading style %q for corpus %q", domain.ErrUnsupportedType, value, tag)
	}
	return s.configStore.Set(key, value)
}

// Typed reads. TOML decodes integers as int64 and floats as float64;
// values written by Set arrive as int or float64.

func (s *SettingsService) str(key string) string {
	v, _ := s.configStore.Lookup(key)
	str, _ := v.(string)
	return str
}

func (s *SettingsService) getPositiveInt(key string, defaultVal int) int {
	v, _ := s.configStore.Lookup(key)
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	}
	if n <= 0 {
		return defaultVal
	}
	return n
}

// getFloat returns defaultVal only when the key is absent or not numeric,
// so an explicit 0 disables rate limiting.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	v, _ := s.configStore.Lookup(key)
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.str(key))
	if provider == "" || !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// firstNonEmpty returns val, or the first set environment variable.
func (s *SettingsService) firstNonEmpty(val string, envVars ...string) string {
	if val != "" {
		return val
	}
	for _, name := range envVars {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// splitCorpusKey splits "corpora.<tag>.<field>".
func splitCorpusKey(key string) (tag, field string, ok bool) {
	rest := strings.TrimPrefix(key, corporaPrefix)
	i := strings.LastIndex(rest, ".")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
