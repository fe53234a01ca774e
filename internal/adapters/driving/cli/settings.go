package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

var settingsCheck bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure retrieval, embedding, LLM and corpus settings.

Settings are stored in config.toml inside the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Long: `Set a setting by its dot-notation key. Run 'citewise settings keys' for
the full list. When an api_key value is omitted it is read from the terminal
without echo.

Examples:
  citewise settings set search.top_k 5
  citewise settings set embedding.provider ollama
  citewise settings set llm.api_key
  citewise settings set corpora.chicago.source manuals/chicago.pdf
  citewise settings set corpora.chicago.headings outline`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsShowCmd.Flags().BoolVar(&settingsCheck, "check", false, "ping the configured providers")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	st := stylesFor(cmd.OutOrStdout())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(st.Title("Current Settings"))
	cmd.Println()

	cmd.Println(st.Heading("[Search]"))
	cmd.Printf("  Top K: %d\n", settings.Search.TopK)
	cmd.Println()

	cmd.Println(st.Heading("[Embedding]"))
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", describeKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Concurrency: %d\n", settings.Embedding.Concurrency)
	if settings.Embedding.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g/s\n", settings.Embedding.RateLimit)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(st, settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println(st.Heading("[LLM]"))
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", describeKey(settings.LLM.APIKey))
	}
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	cmd.Printf("  Status: %s\n", configuredStatus(st, settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println(st.Heading("[Corpora]"))
	for _, tag := range settings.CorpusTags() {
		cs := settings.Corpora[tag]
		cmd.Printf("  %s: %s -> %s (%s)\n", tag, cs.Source, cs.Path, headingDescription(cs))
	}

	if !settingsCheck {
		return nil
	}

	checks, err := settingsService.CheckProviders(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to check providers: %w", err)
	}
	cmd.Println()
	cmd.Println(st.Heading("[Checks]"))
	for _, check := range checks {
		printCheck(cmd, st, check)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	key := args[0]

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case strings.HasSuffix(key, "api_key"):
		cmd.Print("Enter API key: ")
		value = readSecret(cmd.InOrStdin())
		cmd.Println()
		if value == "" {
			return errors.New("API key must not be empty")
		}
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettingsService
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func printCheck(cmd *cobra.Command, st *styles, check domain.ProviderCheck) {
	target := check.Provider.String()
	if check.Model != "" {
		target += "/" + check.Model
	}
	cmd.Printf("  %s (%s): ", check.Role, target)
	if !check.OK() {
		cmd.Println(st.Failure("FAILED: " + check.Err.Error()))
		return
	}
	cmd.Printf("%s in %s\n", st.Success("OK"), check.Latency.Round(time.Millisecond))
}

func configuredStatus(st *styles, ok bool) string {
	if ok {
		return st.Success("configured")
	}
	return st.Warning("not configured")
}

func describeKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

// readSecret reads a line from in without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
