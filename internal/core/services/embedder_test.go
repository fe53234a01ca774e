package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

func TestLazyEmbedder_CreatesOnceUnderContention(t *testing.T) {
	var creates atomic.Int32
	emb := newMockEmbedder("rule")
	lazy := NewLazyEmbedder(func() (driven.EmbeddingService, error) {
		creates.Add(1)
		return emb, nil
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := lazy.Embedder()
			assert.NoError(t, err)
			assert.Same(t, emb, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), creates.Load())
}

func TestLazyEmbedder_RemembersFailure(t *testing.T) {
	boom := errors.New("ollama not running")
	calls := 0
	lazy := NewLazyEmbedder(func() (driven.EmbeddingService, error) {
		calls++
		return nil, boom
	})

	_, err := lazy.Embedder()
	require.ErrorIs(t, err, boom)
	_, err = lazy.Embedder()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.NoError(t, lazy.Close())
}

func TestLazyEmbedder_CloseBeforeUseSkipsCreation(t *testing.T) {
	created := false
	lazy := NewLazyEmbedder(func() (driven.EmbeddingService, error) {
		created = true
		return newMockEmbedder(), nil
	})

	require.NoError(t, lazy.Close())
	assert.False(t, created)

	_, err := lazy.Embedder()
	assert.ErrorIs(t, err, errEmbedderClosed)
	assert.False(t, created)
}

func TestLazyEmbedder_CloseReleasesEmbedder(t *testing.T) {
	emb := newMockEmbedder()
	lazy := NewLazyEmbedder(func() (driven.EmbeddingService, error) { return emb, nil })

	_, err := lazy.Embedder()
	require.NoError(t, err)
	require.NoError(t, lazy.Close())
	assert.True(t, emb.closed)
}

func TestStaticEmbedder(t *testing.T) {
	emb := newMockEmbedder()
	got, err := StaticEmbedder(emb).Embedder()
	require.NoError(t, err)
	assert.Same(t, emb, got)
}
