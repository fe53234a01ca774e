package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

var (
	buildSource string
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build [tag...]",
	Short: "Build corpora from their source documents",
	Long: `Reads each source document page by page, splits it into passages under
their section headings, embeds every passage and writes the corpus file.

With no tags every configured corpus is built. Use --source to build a
single tag from an explicit document; --output defaults to the source path
with a .corpus.db extension.

Examples:
  citewise build
  citewise build bluebook
  citewise build memo --source notes/memo.txt --output notes/memo.db`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildSource, "source", "s", "", "source document to build from")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "corpus file to write (requires --source)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildService == nil {
		return errNoBuildService
	}
	st := stylesFor(cmd.OutOrStdout())

	if buildSource != "" {
		if len(args) != 1 {
			return errors.New("--source requires exactly one tag")
		}
		output := buildOutput
		if output == "" {
			output = domain.DefaultCorpusPath(buildSource)
		}
		info, err := buildService.Build(cmd.Context(), args[0], buildSource, output)
		if err != nil {
			return fmt.Errorf("build %s: %w", args[0], err)
		}
		printBuilt(cmd, st, info)
		return nil
	}
	if buildOutput != "" {
		return errors.New("--output requires --source")
	}

	tags := args
	if len(tags) == 0 {
		if corpusService == nil {
			return errNoCorpusService
		}
		corpora, err := corpusService.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list corpora: %w", err)
		}
		for _, cs := range corpora {
			tags = append(tags, cs.Tag)
		}
	}
	if len(tags) == 0 {
		cmd.Println("No corpora configured.")
		return nil
	}

	for _, tag := range tags {
		info, err := buildService.BuildTag(cmd.Context(), tag)
		if err != nil {
			return fmt.Errorf("build %s: %w", tag, err)
		}
		printBuilt(cmd, st, info)
	}
	return nil
}

func printBuilt(cmd *cobra.Command, st *styles, info *domain.CorpusInfo) {
	cmd.Printf("%s %s: %d passages (%s, %d dims) -> %s\n",
		st.Success("Built"), st.Title(info.Tag), info.PassageCount, info.Model, info.Dimensions, info.Path)
	if info.PassageCount == 0 {
		cmd.Println(st.Warning("  Warning: no passages were extracted; queries will report an empty corpus."))
	}
}
