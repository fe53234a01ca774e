package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleCorporaResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists corpora with build state", func(t *testing.T) {
		corpus := &mockCorpusService{
			corpora: []domain.CorpusSettings{
				{Tag: "bluebook", Source: "private_docs/bluebook.pdf"},
				{Tag: "redbook", Source: "private_docs/redbook.pdf"},
			},
			infos: map[string]*domain.CorpusInfo{
				"bluebook": {Tag: "bluebook", Model: "hashing-v1", PassageCount: 412, BuiltAt: time.Now()},
			},
		}
		server, err := NewServer(&Ports{Query: &mockQueryService{}, Corpus: corpus})
		require.NoError(t, err)

		result, err := server.handleCorporaResource(ctx, readRequest("citewise://corpora"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var entries []corpusEntry
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &entries))
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Built)
		assert.Equal(t, 412, entries[0].PassageCount)
		assert.False(t, entries[1].Built)
	})

	t.Run("empty without corpus service", func(t *testing.T) {
		server, err := NewServer(&Ports{Query: &mockQueryService{}})
		require.NoError(t, err)

		result, err := server.handleCorporaResource(ctx, readRequest("citewise://corpora"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleCorpusResource(t *testing.T) {
	ctx := context.Background()
	corpus := &mockCorpusService{
		infos: map[string]*domain.CorpusInfo{
			"redbook": {Tag: "redbook", Model: "nomic-embed-text", Dimensions: 768, PassageCount: 90},
		},
	}
	server, err := NewServer(&Ports{Query: &mockQueryService{}, Corpus: corpus})
	require.NoError(t, err)

	t.Run("returns info", func(t *testing.T) {
		result, err := server.handleCorpusResource(ctx, readRequest("citewise://corpora/redbook"))
		require.NoError(t, err)

		var info domain.CorpusInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.Equal(t, 768, info.Dimensions)
		assert.Equal(t, 90, info.PassageCount)
	})

	t.Run("unbuilt corpus is not found", func(t *testing.T) {
		_, err := server.handleCorpusResource(ctx, readRequest("citewise://corpora/bluebook"))
		assert.Error(t, err)
	})
}

func TestExtractTag(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"citewise://corpora/bluebook", "bluebook"},
		{"citewise://corpora/", ""},
		{"citewise://corpora/a/b", ""},
		{"file://corpora/bluebook", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTag(tt.uri))
		})
	}
}
