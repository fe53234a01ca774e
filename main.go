// Command citewise is semantic search over legal citation style manuals.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/citewise/internal/adapters/driven/ai"
	"github.com/custodia-labs/citewise/internal/adapters/driven/config/file"
	"github.com/custodia-labs/citewise/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/citewise/internal/adapters/driving/cli"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/core/services"
	"github.com/custodia-labs/citewise/internal/normalisers"
	"github.com/custodia-labs/citewise/internal/normalisers/docx"
	"github.com/custodia-labs/citewise/internal/normalisers/html"
	"github.com/custodia-labs/citewise/internal/normalisers/markdown"
	"github.com/custodia-labs/citewise/internal/normalisers/pdf"
	"github.com/custodia-labs/citewise/internal/normalisers/plaintext"
	"github.com/custodia-labs/citewise/internal/retrieval"
	"github.com/custodia-labs/citewise/internal/segmenter"
)

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the driven adapters into the core services.
func bootstrap(configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	settings := services.NewSettingsService(configStore, ai.Probe{})

	embedder := services.NewLazyEmbedder(func() (driven.EmbeddingService, error) {
		appSettings, err := settings.Get()
		if err != nil {
			return nil, err
		}
		return ai.ConnectEmbedder(context.Background(), &appSettings.Embedding)
	})

	readers := normalisers.NewRegistry(
		pdf.New(os.Getenv("UNIDOC_LICENSE_KEY")),
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
	)
	store := sqlite.NewCorpusStore()

	query := services.NewQueryService(settings, store, embedder, retrieval.Factory)
	build := services.NewBuildService(readers, segmenter.ForCorpus, embedder, store, settings, query)

	watcher := file.NewWatcher(configStore, prompts).OnReload(query.InvalidateAll)

	return &cli.Services{
		Settings: settings,
		Build:    build,
		Query:    query,
		Answer:   services.NewAnswerService(query, settings, prompts, ai.NewLLM),
		Corpus:   services.NewCorpusService(settings, store),
		Watch:    watcher.Run,
		Close:    embedder.Close,
	}, nil
}
