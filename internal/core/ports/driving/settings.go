package driving

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Set updates a single setting by its dot-notation key.
	Set(key, value string) error

	// Unset clears a stored setting so its default applies.
	Unset(key string) error

	// Corpus returns the settings for tag.
	// Returns domain.ErrUnknownCorpus if tag is not configured.
	Corpus(tag string) (*domain.CorpusSettings, error)

	// Keys lists the settable keys in sorted order.
	Keys() []string

	// CheckProviders pings the configured embedding and LLM providers.
	CheckProviders(ctx context.Context) ([]domain.ProviderCheck, error)
}
