package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

var (
	askK    int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <tag> <question>",
	Short: "Answer a question from the manual with citations",
	Long: `Retrieves the passages most similar to the question and asks the
configured LLM to answer from them, citing passages as [n].

The model is the corpus's llm_model setting, falling back to llm.model.
Configure a provider first, e.g.:
  citewise settings set llm.api_key   (or export OPENROUTER_API_KEY)`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of passages used as context (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errNoAnswerService
	}
	tag := args[0]
	question := strings.Join(args[1:], " ")
	st := stylesFor(cmd.OutOrStdout())

	answer, err := answerService.Ask(cmd.Context(), tag, question, askK)
	if errors.Is(err, domain.ErrEmptyCorpus) {
		emptyCorpusMessage(cmd, st, tag)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Println(st.Muted(fmt.Sprintf("Answered by %s from %s.", answer.Model, answer.Tag)))
	if len(answer.Matches) > 0 {
		cmd.Println()
		cmd.Println(st.Title("Sources"))
		printMatches(cmd, st, answer.Matches)
	}
	return nil
}
