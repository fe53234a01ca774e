package segmenter

import (
	"fmt"
	"regexp"
	"strings"
)

// HeadingRule recognises section headings within a block of text.
type HeadingRule interface {
	// Name returns the rule name for logging and configuration.
	Name() string

	// Match reports whether block opens a new section and, if so, its label.
	Match(block string) (label string, ok bool)
}

// PatternRule matches a whole block against a regular expression.
// Without (?s) or (?m) a trailing $ only matches single-line blocks.
// The label is produced by expanding a template against the submatches;
// an empty template labels the section with the whole block.
type PatternRule struct {
	name     string
	re       *regexp.Regexp
	template string
}

// NewPatternRule compiles pattern into a heading rule.
func NewPatternRule(name, pattern, template string) (*PatternRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile heading pattern %q: %w", pattern, err)
	}
	return &PatternRule{name: name, re: re, template: template}, nil
}

func mustPatternRule(name, pattern, template string) *PatternRule {
	r, err := NewPatternRule(name, pattern, template)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the rule name.
func (r *PatternRule) Name() string {
	return r.name
}

// Match tests the trimmed block.
func (r *PatternRule) Match(block string) (string, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return "", false
	}

	sub := r.re.FindStringSubmatchIndex(block)
	if sub == nil {
		return "", false
	}

	if r.template == "" {
		return collapseSpace(block), true
	}

	raw := r.re.ExpandString(nil, r.template, block, sub)
	label := collapseSpace(string(raw))
	if label == "" {
		return "", false
	}
	return label, true
}

// noHeadings never recognises a heading.
type noHeadings struct{}

func (noHeadings) Name() string { return "none" }

func (noHeadings) Match(string) (string, bool) { return "", false }

// Built-in rules.
var (
	// bluebookRule matches single-line "Rule 10", "Table T6", "Bluepages B1", "B12" and "T1" headings.
	bluebookRule = mustPatternRule("bluebook",
		`(?i)^(rule|table|bluepages|b\d+|t\d+)\b.*$`, "")

	// redbookRule matches single-line one or two level outlines: "4 Citations", "12.3 Statutes".
	redbookRule = mustPatternRule("redbook",
		`^(\d{1,2}(?:\.\d{1,2})?)\s+(\S.*)$`, "$1 $2")

	// outlineRule matches outlines of any depth: "3", "3.1", "3.1.4", with optional trailing dot.
	outlineRule = mustPatternRule("outline",
		`^(\d{1,3}(?:\.\d{1,3})*)\.?\s+(\S.*)$`, "$1 $2")
)

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
