package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

func TestSettingsCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range settingsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["show"])
	assert.True(t, names["set"])
	assert.True(t, names["keys"])
	assert.True(t, names["unset"])
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM.Provider = domain.AIProviderOpenAI
	ts.settings.settings.LLM.Model = "openai/gpt-4o-mini"
	ts.settings.settings.LLM.APIKey = "sk-or-v1-abcdefgh1234"

	out, err := executeCommand("settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[Search]")
	assert.Contains(t, out, "Top K: 3")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Model: openai/gpt-4o-mini")
	assert.Contains(t, out, "API Key: sk-o...1234")
	assert.NotContains(t, out, "abcdefgh")
	assert.Contains(t, out, "[Corpora]")
	assert.Contains(t, out, "bluebook: ")
	assert.NotContains(t, out, "Validating")
}

func TestSettingsShowCmd_UnsetLLM(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: (not set)")
	assert.Contains(t, out, "Status: not configured")
}

func TestSettingsShowCmd_Check(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = errors.New("connection refused")

	out, err := executeCommand("settings", "show", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "[Checks]")
	assert.Contains(t, out, "embedding (hashing/")
	assert.Contains(t, out, "FAILED: connection refused")
	assert.Contains(t, out, "llm (ollama/llama3.2): OK in 42ms")
}

func TestSettingsSetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "set", "search.top_k", "5")
	require.NoError(t, err)
	assert.Equal(t, "5", ts.settings.set["search.top_k"])
	assert.Contains(t, out, "Set search.top_k = 5")
}

func TestSettingsSetCmd_MasksAPIKey(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "set", "llm.api_key", "sk-or-v1-secretvalue")
	require.NoError(t, err)
	assert.Equal(t, "sk-or-v1-secretvalue", ts.settings.set["llm.api_key"])
	assert.Contains(t, out, "Set llm.api_key = sk-o...alue")
}

func TestSettingsSetCmd_ReadsAPIKeyFromInput(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("sk-from-stdin-1234\n"))
	defer rootCmd.SetIn(nil)

	_, err := executeCommand("settings", "set", "embedding.api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-stdin-1234", ts.settings.set["embedding.api_key"])
}

func TestSettingsSetCmd_MissingValue(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("settings", "set", "search.top_k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing value")
}

func TestSettingsSetCmd_Invalid(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = domain.ErrInvalidInput

	_, err := executeCommand("settings", "set", "search.top_k", "zero")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsUnsetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "unset", "llm.model")
	require.NoError(t, err)
	assert.True(t, ts.settings.unset["llm.model"])
	assert.Equal(t, "Unset llm.model\n", out)

	ts.settings.setErr = domain.ErrInvalidInput
	_, err = executeCommand("settings", "unset", "llm.colour")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeysCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "keys")
	require.NoError(t, err)
	assert.Equal(t, "embedding.provider\nllm.api_key\nsearch.top_k\n", out)
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "1234...6789"},
		{"sk-ant-api03-abcdef", "sk-a...cdef"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAPIKey(tt.key))
		})
	}
}
