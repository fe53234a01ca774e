package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func writeFakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0600))
	return path
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageReader = (*Reader)(nil)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New("").Extensions())
}

func TestReadPages_Pdftotext(t *testing.T) {
	runner := &mockRunner{output: []byte("Rule 10 Cases\n\nCite the case name.\fRule 12 Statutes\n\nCite the code.\f")}
	reader := NewWithRunner(runner)
	path := writeFakePDF(t)

	pages, err := reader.ReadPages(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Rule 10 Cases\n\nCite the case name.", pages[0].Text)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-enc", "UTF-8", "-layout", path, "-"}, runner.args)
}

func TestReadPages_RunnerError(t *testing.T) {
	reader := NewWithRunner(&mockRunner{err: errors.New("boom")})

	_, err := reader.ReadPages(context.Background(), writeFakePDF(t))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestReadPages_UniPDFFailureFallsBackToPdftotext(t *testing.T) {
	runner := &mockRunner{output: []byte("Rule 10 Cases\fRule 12 Statutes\f")}
	reader := NewWithRunner(runner)
	reader.unipdf = func(context.Context, string) ([]string, error) {
		return nil, errors.New("parsing pdf: unsupported xref")
	}

	pages, err := reader.ReadPages(context.Background(), writeFakePDF(t))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "Rule 12 Statutes", pages[1].Text)
	assert.Equal(t, "pdftotext", runner.name)
}

func TestReadPages_UniPDFFailureWithoutPdftotext(t *testing.T) {
	runner := &mockRunner{}
	reader := NewWithRunner(runner)
	reader.available = func() error { return ErrPDFToolNotFound }
	reader.unipdf = func(context.Context, string) ([]string, error) {
		return nil, errors.New("parsing pdf: unsupported xref")
	}

	_, err := reader.ReadPages(context.Background(), writeFakePDF(t))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.ErrorContains(t, err, "unsupported xref")
	assert.Empty(t, runner.name, "pdftotext is not run")
}

func TestReadPages_UniPDFSuccessSkipsPdftotext(t *testing.T) {
	runner := &mockRunner{}
	reader := NewWithRunner(runner)
	reader.unipdf = func(context.Context, string) ([]string, error) {
		return []string{"Rule 10 Cases"}, nil
	}

	pages, err := reader.ReadPages(context.Background(), writeFakePDF(t))
	require.NoError(t, err)
	assert.Equal(t, []domain.Page{{Number: 1, Text: "Rule 10 Cases"}}, pages)
	assert.Empty(t, runner.name)
}

func TestReadPages_NoPdftotext(t *testing.T) {
	reader := NewWithRunner(&mockRunner{})
	reader.available = func() error { return ErrPDFToolNotFound }

	_, err := reader.ReadPages(context.Background(), writeFakePDF(t))
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestReadPages_MissingFile(t *testing.T) {
	reader := NewWithRunner(&mockRunner{})

	_, err := reader.ReadPages(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "UNIDOC_LICENSE_KEY")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
