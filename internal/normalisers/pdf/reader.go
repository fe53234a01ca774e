// Package pdf extracts page text from PDF documents.
//
// Two backends are supported. UniPDF is used when a UNIDOC_LICENSE_KEY is
// configured; otherwise the poppler pdftotext tool is used if installed.
// A UniPDF failure falls back to pdftotext when it is available.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
	"github.com/custodia-labs/citewise/internal/normalisers"
)

// Ensure Reader implements the interface.
var _ driven.PageReader = (*Reader)(nil)

// ErrPDFToolNotFound indicates neither backend is usable.
var ErrPDFToolNotFound = errors.New("pdf: no UNIDOC_LICENSE_KEY set and pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// CheckAvailable reports whether pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `PDF extraction needs either a UniPDF licence or pdftotext.

  UniPDF:     set UNIDOC_LICENSE_KEY in the environment or .env
  pdftotext:  macOS:          brew install poppler
              Debian/Ubuntu:  apt install poppler-utils
              Fedora:         dnf install poppler-utils`
}

var (
	licenseOnce sync.Once
	licenseErr  error
)

type extractFunc func(ctx context.Context, path string) ([]string, error)

// Reader reads PDF pages.
type Reader struct {
	licenseKey string
	runner     CommandRunner
	available  func() error
	unipdf     extractFunc // nil without a licence key
}

// New creates a PDF reader. With a non-empty licenseKey pages are extracted
// with UniPDF; otherwise pdftotext is used.
func New(licenseKey string) *Reader {
	r := &Reader{licenseKey: licenseKey, runner: execRunner{}, available: CheckAvailable}
	if licenseKey != "" {
		r.unipdf = r.extractUniPDF
	}
	return r
}

// NewWithRunner creates a pdftotext-backed reader with a custom runner.
func NewWithRunner(runner CommandRunner) *Reader {
	return &Reader{runner: runner, available: func() error { return nil }}
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".pdf"}
}

// ReadPages extracts the text of every page in order.
func (r *Reader) ReadPages(ctx context.Context, path string) ([]domain.Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	texts, err := r.extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, path, err)
	}

	pages := normalisers.NumberPages(texts)
	logger.Debug("pdf: read %d pages from %s", len(pages), path)
	return pages, nil
}

func (r *Reader) extract(ctx context.Context, path string) ([]string, error) {
	if r.unipdf == nil {
		return r.extractPdftotext(ctx, path)
	}

	texts, err := r.unipdf(ctx, path)
	if err == nil || ctx.Err() != nil {
		return texts, err
	}
	if availErr := r.available(); availErr != nil {
		return nil, err
	}

	logger.Warn("pdf: unipdf failed on %s, falling back to pdftotext: %v", path, err)
	return r.extractPdftotext(ctx, path)
}

// extractUniPDF reads each page with the UniPDF text extractor.
func (r *Reader) extractUniPDF(ctx context.Context, path string) ([]string, error) {
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(r.licenseKey)
	})
	if licenseErr != nil {
		return nil, fmt.Errorf("setting unidoc license: %w", licenseErr)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}

	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		texts = append(texts, text)

		if i%50 == 0 {
			logger.Progress("pdf pages", i, numPages)
		}
	}
	return texts, nil
}

// extractPdftotext runs pdftotext, which separates pages with form feeds.
func (r *Reader) extractPdftotext(ctx context.Context, path string) ([]string, error) {
	if err := r.available(); err != nil {
		return nil, err
	}

	out, err := r.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", "-layout", path, "-")
	if err != nil {
		return nil, err
	}
	return normalisers.SplitFormFeeds(string(out)), nil
}
