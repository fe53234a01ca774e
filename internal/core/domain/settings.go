package domain

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// AIProvider names a backend for embeddings, text generation or both.
type AIProvider string

const (
	AIProviderHashing   AIProvider = "hashing"   // built-in feature hashing, embeddings only
	AIProviderOllama    AIProvider = "ollama"    // local server
	AIProviderOpenAI    AIProvider = "openai"    // OpenAI or a compatible API such as OpenRouter
	AIProviderAnthropic AIProvider = "anthropic" // generation only
)

type providerTraits struct {
	label      string
	needsKey   bool
	embedModel string // empty when the provider cannot embed
	llmModel   string // empty when the provider cannot generate
}

var providerTable = map[AIProvider]providerTraits{
	AIProviderHashing: {
		label:      "Hashing (built-in, offline)",
		embedModel: "hashing",
	},
	AIProviderOllama: {
		label:      "Ollama (local)",
		embedModel: "all-minilm",
		llmModel:   "llama3.2",
	},
	AIProviderOpenAI: {
		label:      "OpenAI-compatible (cloud)",
		needsKey:   true,
		embedModel: "text-embedding-3-small",
		llmModel:   "gpt-4o-mini",
	},
	AIProviderAnthropic: {
		label:    "Anthropic (cloud)",
		needsKey: true,
		llmModel: "claude-3-5-sonnet-latest",
	},
}

func (p AIProvider) String() string { return string(p) }

func (p AIProvider) IsValid() bool {
	_, ok := providerTable[p]
	return ok
}

func (p AIProvider) RequiresAPIKey() bool { return providerTable[p].needsKey }

// Description is the label shown by settings show.
func (p AIProvider) Description() string {
	if t, ok := providerTable[p]; ok {
		return t.label
	}
	return "Unknown"
}

func (p AIProvider) CanEmbed() bool { return providerTable[p].embedModel != "" }

func (p AIProvider) CanGenerate() bool { return providerTable[p].llmModel != "" }

// DefaultEmbeddingModel is used when embedding.model is unset.
func (p AIProvider) DefaultEmbeddingModel() string { return providerTable[p].embedModel }

// DefaultLLMModel is used when llm.model is unset.
func (p AIProvider) DefaultLLMModel() string { return providerTable[p].llmModel }

// knownDimensions is the native vector width of common embedding models.
var knownDimensions = map[string]int{
	"hashing":                384,
	"all-minilm":             384,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// KnownDimensions returns the vector width of model, or 0 if unknown.
func KnownDimensions(model string) int { return knownDimensions[model] }

// HeadingStyle selects the section-heading rule used when segmenting a source.
type HeadingStyle string

const (
	// HeadingStyleBluebook matches "Rule", "Table", "Bluepages", "B12" and "T6" headings.
	HeadingStyleBluebook HeadingStyle = "bluebook"
	// HeadingStyleRedbook matches one or two level numeric outlines such as "1.2 Title".
	HeadingStyleRedbook HeadingStyle = "redbook"
	// HeadingStyleOutline matches numeric outlines of any depth such as "4.10.2 Title".
	HeadingStyleOutline HeadingStyle = "outline"
	// HeadingStyleNone never matches.
	HeadingStyleNone HeadingStyle = "none"
)

func (h HeadingStyle) String() string { return string(h) }

func (h HeadingStyle) IsValid() bool {
	switch h {
	case HeadingStyleBluebook, HeadingStyleRedbook, HeadingStyleOutline, HeadingStyleNone:
		return true
	}
	return false
}

// SearchSettings holds retrieval behaviour configuration.
type SearchSettings struct {
	// TopK is the default number of passages returned per query.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size when non-zero.
	Dimensions int

	// Concurrency bounds parallel embedding requests during a build.
	Concurrency int

	// RateLimit caps embedding requests per second. Zero means unlimited.
	RateLimit float64
}

// IsConfigured reports whether Provider can embed with the credentials given.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.CanEmbed() && (e.APIKey != "" || !e.Provider.RequiresAPIKey())
}

// LLMSettings holds text-generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the default LLM model name. Corpora may override it.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI-compatible and Anthropic).
	APIKey string

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature controls randomness of the answer.
	Temperature float64
}

// IsConfigured reports whether Provider can generate with the credentials given.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.CanGenerate() && (l.APIKey != "" || !l.Provider.RequiresAPIKey())
}

// FallbackLLMModel answers for corpora without an llm_model when the
// LLM endpoint is OpenRouter and llm.model is unset.
const FallbackLLMModel = "deepseek/deepseek-chat-v3-0324:free"

// DefaultModel is the model used when llm.model is unset.
// OpenRouter endpoints get FallbackLLMModel; others the provider default.
func (l LLMSettings) DefaultModel() string {
	if l.Provider == AIProviderOpenAI && strings.Contains(l.BaseURL, "openrouter.ai") {
		return FallbackLLMModel
	}
	return l.Provider.DefaultLLMModel()
}

// WithModel returns a copy of the settings bound to model, if model is set.
func (l LLMSettings) WithModel(model string) LLMSettings {
	if model != "" {
		l.Model = model
	}
	return l
}

// Provider roles reported by a ProviderCheck.
const (
	RoleEmbedding = "embedding"
	RoleLLM       = "llm"
)

// ProviderCheck is the outcome of pinging one configured provider.
type ProviderCheck struct {
	Role     string
	Provider AIProvider
	Model    string
	Latency  time.Duration
	Err      error
}

// OK reports whether the provider answered.
func (c ProviderCheck) OK() bool {
	return c.Err == nil
}

// CorpusSettings describes one named corpus.
type CorpusSettings struct {
	// Tag identifies the corpus.
	Tag string

	// Source is the path of the source document (PDF or text).
	Source string

	// Path is where the built corpus file lives.
	Path string

	// Headings is the heading style used when segmenting Source.
	Headings HeadingStyle

	// HeadingPattern is an optional custom heading regular expression.
	// When set it replaces the Headings style.
	HeadingPattern string

	// HeadingLabel is the regexp.Expand template for custom heading labels.
	HeadingLabel string

	// LLMModel overrides LLMSettings.Model when answering from this corpus.
	LLMModel string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds retrieval settings.
	Search SearchSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds text-generation provider settings.
	LLM LLMSettings

	// Corpora holds the configured corpora keyed by tag.
	Corpora map[string]CorpusSettings
}

// CorpusTags returns the configured corpus tags in sorted order.
func (s *AppSettings) CorpusTags() []string {
	return slices.Sorted(maps.Keys(s.Corpora))
}

// DefaultCorpusPath places a corpus file next to its source document.
func DefaultCorpusPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".corpus.db"
}

// DefaultTopK is the number of passages returned when none is requested.
const DefaultTopK = 3

// DefaultAppSettings returns settings with sensible defaults.
// Embedding defaults to the built-in hashing provider so corpora can be
// built without any external service. The LLM is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			TopK: DefaultTopK,
		},
		Embedding: EmbeddingSettings{
			Provider:    AIProviderHashing,
			Model:       AIProviderHashing.DefaultEmbeddingModel(),
			Concurrency: 4,
		},
		LLM: LLMSettings{
			MaxTokens:   1024,
			Temperature: 0.4,
		},
		Corpora: DefaultCorpora("private_docs"),
	}
}

// DefaultCorpora returns the two built-in style manuals rooted at dir.
func DefaultCorpora(dir string) map[string]CorpusSettings {
	return map[string]CorpusSettings{
		"bluebook": {
			Tag:      "bluebook",
			Source:   filepath.Join(dir, "bluebook.pdf"),
			Path:     filepath.Join(dir, "bluebook.corpus.db"),
			Headings: HeadingStyleBluebook,
			LLMModel: "meta-llama/llama-4-scout:free",
		},
		"redbook": {
			Tag:      "redbook",
			Source:   filepath.Join(dir, "redbook.pdf"),
			Path:     filepath.Join(dir, "redbook.corpus.db"),
			Headings: HeadingStyleRedbook,
			LLMModel: "mistralai/mistral-small-3.1-24b-instruct:free",
		},
	}
}
