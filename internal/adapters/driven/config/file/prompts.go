package file

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
)

const promptExt = ".tmpl"

//go:embed defaults/*.tmpl defaults/README.md
var defaultPrompts embed.FS

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore renders templates from a user-editable directory, seeded
// with the built-in defaults on first use. A missing or unparsable file
// falls back to the built-in template of the same name.
type PromptStore struct {
	dir string

	seedOnce sync.Once

	mu     sync.Mutex
	parsed map[string]*template.Template
}

// NewPromptStore returns a store over dir, ~/.citewise/prompts when empty.
// Nothing is read or written until the first Render.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".citewise", "prompts")
	}
	return &PromptStore{dir: dir, parsed: make(map[string]*template.Template)}, nil
}

// Dir is the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Render executes the named template with data.
func (s *PromptStore) Render(name string, data any) (string, error) {
	s.seedOnce.Do(s.seed)

	tmpl, err := s.template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Reload forgets parsed templates.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.parsed)
	s.mu.Unlock()
}

func (s *PromptStore) template(name string) (*template.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.parsed[name]; ok {
		return t, nil
	}

	t, err := s.parse(name)
	if err != nil {
		return nil, err
	}
	s.parsed[name] = t
	return t, nil
}

// parse prefers the user's file and falls back to the built-in one.
func (s *PromptStore) parse(name string) (*template.Template, error) {
	path := filepath.Join(s.dir, name+promptExt)
	src, err := os.ReadFile(path)
	switch {
	case err == nil:
		t, perr := newTemplate(name, src)
		if perr == nil {
			return t, nil
		}
		logger.Warn("Prompt %s: %v (using built-in template)", path, perr)
	case !errors.Is(err, fs.ErrNotExist):
		logger.Warn("Prompt %s: %v (using built-in template)", path, err)
	}

	src, err = defaultPrompts.ReadFile("defaults/" + name + promptExt)
	if err != nil {
		return nil, fmt.Errorf("unknown prompt %q", name)
	}
	return newTemplate(name, src)
}

func newTemplate(name string, src []byte) (*template.Template, error) {
	return template.New(name).Option("missingkey=error").Parse(string(src))
}

// seed copies the built-in files into the prompt directory without
// overwriting edits. Failure is logged; Render still works from the
// built-in templates.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		logger.Warn("Prompt directory %s: %v", s.dir, err)
		return
	}
	entries, err := defaultPrompts.ReadDir("defaults")
	if err != nil {
		return
	}
	for _, e := range entries {
		dst := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		src, err := defaultPrompts.ReadFile("defaults/" + e.Name())
		if err != nil {
			continue
		}
		if err := os.WriteFile(dst, src, 0600); err != nil {
			logger.Warn("Seed prompt %s: %v", dst, err)
			return
		}
	}
}
