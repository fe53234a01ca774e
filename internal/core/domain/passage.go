package domain

import "time"

// UnknownSection labels passages that precede any recognised heading.
const UnknownSection = "Unknown"

// Page is one page of extracted source text.
type Page struct {
	// Number is the 1-based page number in the source document.
	Number int

	// Text is the extracted page text.
	Text string
}

// Passage is one retrievable unit of document text with provenance.
type Passage struct {
	// Text is the verbatim block of source content. Never empty.
	Text string `json:"text"`

	// Section is the heading the passage falls under, or UnknownSection.
	Section string `json:"section"`

	// Page is the 1-based source page the passage came from.
	Page int `json:"page"`
}

// EmbeddedPassage is a Passage plus its vector representation.
type EmbeddedPassage struct {
	Passage

	// Embedding is the passage vector. Its length is the corpus dimension.
	Embedding []float32 `json:"embedding"`
}

// Corpus is the ordered, embedded passage collection for one source document.
// A corpus is built in one batch and is read-only afterwards.
type Corpus struct {
	// Tag identifies the corpus (e.g. "bluebook").
	Tag string

	// Model is the identity of the embedding model that produced every vector.
	Model string

	// Dimensions is the length of every embedding in the corpus.
	Dimensions int

	// Passages holds the embedded passages in source order.
	Passages []EmbeddedPassage

	// BuiltAt is when the corpus was built.
	BuiltAt time.Time
}

// Len returns the number of passages in the corpus.
func (c *Corpus) Len() int {
	return len(c.Passages)
}

// Info summarises the corpus as persisted at path.
func (c *Corpus) Info(path string) CorpusInfo {
	return CorpusInfo{
		Tag:          c.Tag,
		Path:         path,
		Model:        c.Model,
		Dimensions:   c.Dimensions,
		PassageCount: len(c.Passages),
		BuiltAt:      c.BuiltAt,
	}
}

// CorpusInfo summarises a persisted corpus without its vectors.
type CorpusInfo struct {
	Tag          string    `json:"tag"`
	Path         string    `json:"path"`
	Model        string    `json:"model"`
	Dimensions   int       `json:"dimensions"`
	PassageCount int       `json:"passage_count"`
	BuiltAt      time.Time `json:"built_at"`
}

// Match is one ranked passage returned for a query.
type Match struct {
	// Score is the cosine similarity, rounded to 4 decimal places.
	Score float64 `json:"score"`

	Text    string `json:"text"`
	Section string `json:"section"`
	Page    int    `json:"page"`
}

// Answer is a generated response grounded on retrieved passages.
type Answer struct {
	// Question is the user's original question.
	Question string `json:"question"`

	// Tag is the corpus the context came from.
	Tag string `json:"tag"`

	// Model is the text-generation model that produced Text.
	Model string `json:"model"`

	// Text is the generated answer.
	Text string `json:"text"`

	// Matches are the passages supplied as cited context.
	Matches []Match `json:"matches"`
}
