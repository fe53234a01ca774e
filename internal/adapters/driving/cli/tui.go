package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui"
	"github.com/custodia-labs/citewise/internal/core/domain"
)

// runTUIApp runs the program. Tests replace it to avoid taking the terminal.
var runTUIApp = (*tui.App).Run

var tuiCmd = &cobra.Command{
	Use:   "tui [tag]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Pick a corpus, type a question, and browse the ranked passages. Press "a"
on the results to have the configured LLM answer with citations. Passing a
tag skips the corpus picker.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Read passage
  n        - New query
  a        - Ask the LLM
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNoQueryService
	}
	if corpusService == nil {
		return errNoCorpusService
	}

	var tag string
	if len(args) == 1 {
		tag = args[0]
		if _, err := corpusService.Info(cmd.Context(), tag); err != nil {
			if errors.Is(err, domain.ErrCorpusUnavailable) {
				return fmt.Errorf("%w: build it with 'citewise build %s'", err, tag)
			}
			return err
		}
	}

	app, err := tui.NewApp(&tui.Ports{
		Query:  queryService,
		Corpus: corpusService,
		Answer: answerService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithTag(tag)
	startConfigWatch(cmd.Context())

	if err := runTUIApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
