package normalisers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

type stubReader struct {
	exts  []string
	pages []domain.Page
	err   error
	calls int
}

func (s *stubReader) Extensions() []string { return s.exts }

func (s *stubReader) ReadPages(_ context.Context, _ string) ([]domain.Page, error) {
	s.calls++
	return s.pages, s.err
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	txt := &stubReader{exts: []string{".txt"}, pages: []domain.Page{{Number: 1, Text: "t"}}}
	pdf := &stubReader{exts: []string{".pdf"}, pages: []domain.Page{{Number: 1, Text: "p"}}}
	r := NewRegistry(txt, pdf)

	pages, err := r.ReadPages(context.Background(), "/docs/manual.PDF")
	require.NoError(t, err)
	assert.Equal(t, "p", pages[0].Text)
	assert.Equal(t, 1, pdf.calls)
	assert.Equal(t, 0, txt.calls)
}

func TestRegistry_UnknownExtension(t *testing.T) {
	r := NewRegistry(&stubReader{exts: []string{".txt"}})

	_, err := r.ReadPages(context.Background(), "manual.epub")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
	assert.Contains(t, err.Error(), ".txt")
}

func TestRegistry_PropagatesReaderError(t *testing.T) {
	r := NewRegistry(&stubReader{exts: []string{".txt"}, err: domain.ErrSourceUnavailable})

	_, err := r.ReadPages(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	first := &stubReader{exts: []string{".md"}}
	second := &stubReader{exts: []string{".MD", ".markdown"}}
	r := NewRegistry(first)
	r.Register(second)
	r.Register(nil)

	_, err := r.ReadPages(context.Background(), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, 0, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, []string{".markdown", ".md"}, r.Extensions())
}

func TestSplitFormFeeds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "no form feed", in: "one page", want: []string{"one page"}},
		{name: "trailing form feed", in: "a\fb\f", want: []string{"a", "b"}},
		{name: "trailing whitespace page", in: "a\fb\f\n", want: []string{"a", "b"}},
		{name: "blank middle page kept", in: "a\f\fc", want: []string{"a", "", "c"}},
		{name: "empty", in: "", want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitFormFeeds(tt.in))
		})
	}
}

func TestNumberPages(t *testing.T) {
	pages := NumberPages([]string{"a", "b"})
	assert.Equal(t, []domain.Page{{Number: 1, Text: "a"}, {Number: 2, Text: "b"}}, pages)
	assert.Empty(t, NumberPages(nil))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\nb\nc", CleanText([]byte("\ufeffa\r\nb\rc")))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = ReadFile(filepath.Join(t.TempDir(), "none.txt"))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
