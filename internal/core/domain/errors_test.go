package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrSourceUnavailable", ErrSourceUnavailable},
		{"ErrCorpusUnavailable", ErrCorpusUnavailable},
		{"ErrUnknownCorpus", ErrUnknownCorpus},
		{"ErrInvalidDimension", ErrInvalidDimension},
		{"ErrEmptyCorpus", ErrEmptyCorpus},
		{"ErrModelMismatch", ErrModelMismatch},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_AreDistinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrSourceUnavailable,
		ErrCorpusUnavailable, ErrUnknownCorpus, ErrInvalidDimension, ErrEmptyCorpus,
		ErrModelMismatch, ErrLLMUnavailable, ErrEmbeddingUnavailable, ErrRateLimited,
	}

	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrCorpusUnavailable_Wrapped(t *testing.T) {
	err := fmt.Errorf("load corpus %q: %w", "bluebook", ErrCorpusUnavailable)

	assert.True(t, errors.Is(err, ErrCorpusUnavailable))
	assert.False(t, errors.Is(err, ErrEmptyCorpus))
	assert.Contains(t, err.Error(), "corpus unavailable")
}

func TestErrEmptyCorpus(t *testing.T) {
	assert.Equal(t, "empty corpus", ErrEmptyCorpus.Error())
}

func TestErrInvalidDimension(t *testing.T) {
	assert.Equal(t, "invalid dimension", ErrInvalidDimension.Error())
}
