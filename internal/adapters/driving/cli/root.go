// Package cli provides the cobra command tree for citewise.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/core/ports/driving"
	"github.com/custodia-labs/citewise/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports the commands run against.
type Services struct {
	Settings driving.SettingsService
	Build    driving.BuildService
	Query    driving.QueryService
	Answer   driving.AnswerService
	Corpus   driving.CorpusService

	// Watch reloads configuration when it changes on disk, until ctx is
	// cancelled. Long-running commands start it. Optional.
	Watch func(ctx context.Context) error

	// Close releases resources held by the services. Optional.
	Close func() error
}

// Bootstrap builds the services once persistent flags are parsed.
type Bootstrap func(configDir string) (*Services, error)

var (
	verbose   bool
	configDir string

	bootstrap     Bootstrap
	closeServices func() error
	watchConfig   func(ctx context.Context) error

	settingsService driving.SettingsService
	buildService    driving.BuildService
	queryService    driving.QueryService
	answerService   driving.AnswerService
	corpusService   driving.CorpusService
)

var rootCmd = &cobra.Command{
	Use:   "citewise",
	Short: "Semantic search over legal citation style manuals",
	Long: `citewise segments legal style manuals such as the Bluebook and the Redbook
into passages, embeds them once into a corpus file per manual, and answers
natural-language questions with the most similar passages, each labelled
with its section heading and page number.

Build a corpus, then query it:
  citewise build bluebook
  citewise query bluebook "how do I cite a state statute"
  citewise ask redbook "when is a serial comma required"`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.citewise)")
}

// SetServices installs the services used by the commands.
func SetServices(s *Services) {
	settingsService = s.Settings
	buildService = s.Build
	queryService = s.Query
	answerService = s.Answer
	corpusService = s.Corpus
	closeServices = s.Close
	watchConfig = s.Watch
}

// startConfigWatch runs the configuration watcher in the background for the
// lifetime of ctx. Watch failures are logged, never fatal.
func startConfigWatch(ctx context.Context) {
	if watchConfig == nil {
		return
	}
	watch := watchConfig
	go func() {
		if err := watch(ctx); err != nil {
			logger.Warn("configuration watch stopped: %v", err)
		}
	}()
}

// Execute runs the root command. Services are created lazily by b after
// flag parsing and closed before Execute returns.
func Execute(ctx context.Context, b Bootstrap) error {
	bootstrap = b
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("closing services: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func initServices() error {
	if bootstrap == nil || settingsService != nil {
		return nil
	}
	svc, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(svc)
	return nil
}

var (
	errNoSettingsService = errors.New("settings service not configured")
	errNoBuildService    = errors.New("build service not configured")
	errNoQueryService    = errors.New("query service not configured")
	errNoAnswerService   = errors.New("answer service not configured")
	errNoCorpusService   = errors.New("corpus service not configured")
)
