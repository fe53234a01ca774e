package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

var (
	queryK    int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query <tag> <text>",
	Short: "Find the passages most similar to a query",
	Long: `Embeds the query text and ranks every passage of the tag's corpus by
cosine similarity. Results carry the score, section heading and page.

The corpus is loaded once per process. When -k is omitted the search.top_k
setting is used.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 0, "number of passages to return (default from settings)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output matches as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errNoQueryService
	}
	tag := args[0]
	text := strings.Join(args[1:], " ")
	st := stylesFor(cmd.OutOrStdout())

	matches, err := queryService.Query(cmd.Context(), tag, text, queryK)
	if errors.Is(err, domain.ErrEmptyCorpus) {
		if queryJSON {
			return printJSON(cmd, []domain.Match{})
		}
		emptyCorpusMessage(cmd, st, tag)
		return nil
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		if matches == nil {
			matches = []domain.Match{}
		}
		return printJSON(cmd, matches)
	}

	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	printMatches(cmd, st, matches)
	return nil
}
