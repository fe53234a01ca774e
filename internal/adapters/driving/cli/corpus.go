package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

var corpusJSON bool

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect configured corpora",
	Long: `List the configured corpora and show the metadata recorded in each
built corpus file: embedding model, dimensions, passage count and build time.`,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured corpora",
	Args:  cobra.NoArgs,
	RunE:  runCorpusList,
}

var corpusInfoCmd = &cobra.Command{
	Use:   "info <tag>",
	Short: "Show build metadata for a corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusInfo,
}

func init() {
	corpusInfoCmd.Flags().BoolVar(&corpusJSON, "json", false, "output metadata as JSON")
	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusInfoCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusList(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errNoCorpusService
	}
	st := stylesFor(cmd.OutOrStdout())

	corpora, err := corpusService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list corpora: %w", err)
	}
	if len(corpora) == 0 {
		cmd.Println("No corpora configured.")
		return nil
	}

	cmd.Println(st.Title("Corpora"))
	cmd.Println()
	for _, cs := range corpora {
		status := st.Success("built")
		info, err := corpusService.Info(cmd.Context(), cs.Tag)
		switch {
		case errors.Is(err, domain.ErrCorpusUnavailable):
			status = st.Warning("not built")
		case err != nil:
			status = st.Failure("unreadable: " + err.Error())
		default:
			status += st.Muted(fmt.Sprintf(" (%d passages)", info.PassageCount))
		}

		cmd.Printf("%s  %s\n", st.Heading(cs.Tag), status)
		cmd.Printf("  Source:   %s\n", cs.Source)
		cmd.Printf("  Corpus:   %s\n", cs.Path)
		cmd.Printf("  Headings: %s\n", headingDescription(cs))
		if cs.LLMModel != "" {
			cmd.Printf("  Model:    %s\n", cs.LLMModel)
		}
	}
	return nil
}

func runCorpusInfo(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errNoCorpusService
	}
	st := stylesFor(cmd.OutOrStdout())

	info, err := corpusService.Info(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrCorpusUnavailable) {
		return fmt.Errorf("%w. Build it with 'citewise build %s'", err, args[0])
	}
	if err != nil {
		return err
	}

	if corpusJSON {
		return printJSON(cmd, info)
	}

	cmd.Println(st.Title(info.Tag))
	cmd.Printf("  Path:       %s\n", info.Path)
	cmd.Printf("  Model:      %s\n", info.Model)
	cmd.Printf("  Dimensions: %d\n", info.Dimensions)
	cmd.Printf("  Passages:   %d\n", info.PassageCount)
	cmd.Printf("  Built:      %s\n", info.BuiltAt.Local().Format(time.RFC1123))
	return nil
}

func headingDescription(cs domain.CorpusSettings) string {
	if cs.HeadingPattern != "" {
		return "custom " + cs.HeadingPattern
	}
	if cs.Headings == "" {
		return string(domain.HeadingStyleNone)
	}
	return cs.Headings.String()
}
