package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

const configFileName = "config.toml"

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists settings in <dir>/config.toml. The file keeps its
// nested tables on disk; in memory every leaf is addressed by its dotted
// path.
type ConfigStore struct {
	path string

	mu     sync.RWMutex
	leaves map[string]any
}

// NewConfigStore opens dir/config.toml, creating dir when needed. An empty
// dir means ~/.citewise. A missing file is an empty configuration; a file
// that does not parse is an error.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".citewise")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, configFileName)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path is the location of config.toml.
func (s *ConfigStore) Path() string {
	return s.path
}

// Reload replaces the in-memory view with the file's current contents.
// On a parse error the previous view is kept.
func (s *ConfigStore) Reload() error {
	leaves, err := readLeaves(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.leaves = leaves
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.leaves[key]
	return v, ok
}

func (s *ConfigStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.leaves {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Set stores value and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	return s.update(func(leaves map[string]any) { leaves[key] = value })
}

// Unset drops key and rewrites the file.
func (s *ConfigStore) Unset(key string) error {
	return s.update(func(leaves map[string]any) { delete(leaves, key) })
}

// update applies fn to the leaves and writes the result. The in-memory view
// only changes once the write succeeded.
func (s *ConfigStore) update(fn func(map[string]any)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]any, len(s.leaves)+1)
	for k, v := range s.leaves {
		next[k] = v
	}
	fn(next)

	if err := writeLeaves(s.path, next); err != nil {
		return err
	}
	s.leaves = next
	return nil
}

func readLeaves(path string) (map[string]any, error) {
	leaves := make(map[string]any)

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return leaves, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	collectLeaves(leaves, "", doc)
	return leaves, nil
}

// collectLeaves records every non-table value of table under its dotted path.
func collectLeaves(dst map[string]any, path string, table map[string]any) {
	for name, v := range table {
		key := name
		if path != "" {
			key = path + "." + name
		}
		if sub, ok := v.(map[string]any); ok {
			collectLeaves(dst, key, sub)
			continue
		}
		dst[key] = v
	}
}

// writeLeaves encodes leaves as nested tables, so [corpora.bluebook] stays
// the layout users edit by hand, and replaces path via a temp file.
func writeLeaves(path string, leaves map[string]any) error {
	raw, err := toml.Marshal(buildTables(leaves))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// buildTables is the inverse of collectLeaves. When "a" and "a.b" are both
// set the table wins, since deeper keys are placed last.
func buildTables(leaves map[string]any) map[string]any {
	keys := make([]string, 0, len(leaves))
	for k := range leaves {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return strings.Count(a, ".") - strings.Count(b, ".")
	})

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		table := root
		for _, name := range parts[:len(parts)-1] {
			sub, ok := table[name].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				table[name] = sub
			}
			table = sub
		}
		table[parts[len(parts)-1]] = leaves[key]
	}
	return root
}
