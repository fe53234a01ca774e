// Package driven declares what the core needs from the outside world.
//
// Services receive these interfaces from the composition root in main.go
// and never see a concrete adapter.
//
// EmbeddingService, CorpusStore, PageReaderRegistry, ConfigStore and
// PromptStore are always wired. LLMService is built per request and may be
// missing, in which case retrieval still works and ask does not. A nil
// ProviderProbe makes settings show --check report nothing.
//
// This package imports domain and the standard library only.
package driven
