package segmenter

import (
	"fmt"
	"sort"
)

// Config keys understood by the custom pattern builder.
const (
	ConfigPattern = "pattern"
	ConfigLabel   = "label"
)

// BuilderFunc creates a HeadingRule from generic config.
type BuilderFunc func(cfg map[string]string) (HeadingRule, error)

// Registry maps heading style names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty heading rule registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// DefaultRegistry returns a registry holding the built-in styles
// plus the "pattern" builder for user-defined headings.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("bluebook", static(bluebookRule))
	r.Register("redbook", static(redbookRule))
	r.Register("outline", static(outlineRule))
	r.Register("none", static(noHeadings{}))
	r.Register("pattern", func(cfg map[string]string) (HeadingRule, error) {
		pattern := cfg[ConfigPattern]
		if pattern == "" {
			return nil, fmt.Errorf("pattern heading rule: %q is required", ConfigPattern)
		}
		return NewPatternRule("pattern", pattern, cfg[ConfigLabel])
	})
	return r
}

func static(rule HeadingRule) BuilderFunc {
	return func(map[string]string) (HeadingRule, error) {
		return rule, nil
	}
}

// Register adds a heading rule builder under name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates the rule registered under name.
func (r *Registry) Build(name string, cfg map[string]string) (HeadingRule, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown heading style: %s", name)
	}
	return builder(cfg)
}

// Has returns true if a style with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered style names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
