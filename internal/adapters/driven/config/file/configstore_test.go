package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, dir string) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store
}

func lookup(store *ConfigStore, key string) any {
	v, _ := store.Lookup(key)
	return v
}

func TestNewConfigStore_CreatesPrivateDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "citewise")

	store := openStore(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys(""))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_DefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store := openStore(t, "")
	assert.Equal(t, filepath.Join(home, ".citewise", "config.toml"), store.Path())
}

func TestNewConfigStore_Errors(t *testing.T) {
	_, err := NewConfigStore("/dev/null/citewise")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[corpora\npath = "), 0600))
	_, err = NewConfigStore(dir)
	assert.ErrorContains(t, err, "parse")
}

func TestConfigStore_ReadsHandWrittenTables(t *testing.T) {
	dir := t.TempDir()
	content := `
# local overrides
[search]
top_k = 5

[embedding]
rate_limit = 2

[corpora.fedrules]
source = "docs/frcp.txt"
path = "docs/frcp.corpus.db"
headings = "outline"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store := openStore(t, dir)
	assert.Equal(t, int64(5), lookup(store, "search.top_k"))
	assert.Equal(t, int64(2), lookup(store, "embedding.rate_limit"))
	assert.Equal(t, "outline", lookup(store, "corpora.fedrules.headings"))
	assert.Equal(t, []string{
		"corpora.fedrules.headings",
		"corpora.fedrules.path",
		"corpora.fedrules.source",
	}, store.Keys("corpora."))
}

func TestConfigStore_SetPersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	require.NoError(t, store.Set("corpora.bluebook.headings", "bluebook"))
	require.NoError(t, store.Set("search.top_k", 4))
	require.NoError(t, store.Set("embedding.rate_limit", 1.5))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[corpora.bluebook]")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened := openStore(t, dir)
	assert.Equal(t, "bluebook", lookup(reopened, "corpora.bluebook.headings"))
	assert.Equal(t, int64(4), lookup(reopened, "search.top_k"))
	assert.Equal(t, 1.5, lookup(reopened, "embedding.rate_limit"))
}

func TestConfigStore_Unset(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	require.NoError(t, store.Set("llm.model", "m"))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	require.NoError(t, store.Unset("llm.model"))
	require.NoError(t, store.Unset("never.set"))

	assert.Equal(t, []string{"llm.provider"}, openStore(t, dir).Keys(""))
}

func TestConfigStore_FailedWriteKeepsView(t *testing.T) {
	store := openStore(t, t.TempDir())
	require.NoError(t, store.Set("llm.model", "m"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("llm.model", "other"))
	assert.Equal(t, "m", lookup(store, "llm.model"))

	assert.Error(t, store.Set("llm.timeout", make(chan int)))
	_, ok := store.Lookup("llm.timeout")
	assert.False(t, ok)
}

func TestConfigStore_ReloadKeepsViewOnParseError(t *testing.T) {
	store := openStore(t, t.TempDir())
	require.NoError(t, store.Set("search.top_k", 3))

	require.NoError(t, os.WriteFile(store.Path(), []byte("search = ]["), 0600))
	assert.Error(t, store.Reload())
	assert.Equal(t, 3, lookup(store, "search.top_k"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("# emptied\n"), 0600))
	require.NoError(t, store.Reload())
	assert.Empty(t, store.Keys(""))
}

func TestBuildTables(t *testing.T) {
	got := buildTables(map[string]any{
		"llm":                   "shadowed",
		"llm.model":             "m",
		"corpora.bluebook.path": "b.db",
	})

	assert.Equal(t, map[string]any{
		"llm":     map[string]any{"model": "m"},
		"corpora": map[string]any{"bluebook": map[string]any{"path": "b.db"}},
	}, got)
}

func TestConfigStore_ConcurrentSet(t *testing.T) {
	store := openStore(t, t.TempDir())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("corpora.c%d.path", i)
			assert.NoError(t, store.Set(key, "p"))
			store.Lookup(key)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Keys("corpora."), 10)
}
