package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

const uriScheme = "citewise://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "corpora",
		Name:        "corpora",
		Description: "Configured corpora and whether each has been built",
		MIMEType:    "application/json",
	}, s.handleCorporaResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "corpora/{tag}",
		Name:        "corpus-info",
		Description: "Build metadata of a single corpus",
		MIMEType:    "application/json",
	}, s.handleCorpusResource)
}

// corpusEntry is one element of the corpora resource.
type corpusEntry struct {
	Tag          string `json:"tag"`
	Source       string `json:"source"`
	Built        bool   `json:"built"`
	Model        string `json:"model,omitempty"`
	PassageCount int    `json:"passage_count"`
}

// handleCorporaResource lists the configured corpora.
func (s *Server) handleCorporaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	corpora, err := s.ports.Corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corpora: %w", err)
	}

	entries := make([]corpusEntry, len(corpora))
	for i, cs := range corpora {
		entries[i] = corpusEntry{Tag: cs.Tag, Source: cs.Source}
		info, err := s.ports.Corpus.Info(ctx, cs.Tag)
		if err != nil {
			if errors.Is(err, domain.ErrCorpusUnavailable) {
				continue
			}
			return nil, fmt.Errorf("reading corpus %s: %w", cs.Tag, err)
		}
		entries[i].Built = true
		entries[i].Model = info.Model
		entries[i].PassageCount = info.PassageCount
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling corpora: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleCorpusResource returns the metadata of one corpus.
func (s *Server) handleCorpusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	tag := extractTag(req.Params.URI)
	if tag == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info, err := s.ports.Corpus.Info(ctx, tag)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCorpus) || errors.Is(err, domain.ErrCorpusUnavailable) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("reading corpus %s: %w", tag, err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling corpus: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractTag extracts the tag from a URI like citewise://corpora/{tag}.
func extractTag(uri string) string {
	const prefix = uriScheme + "corpora/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	tag := strings.TrimPrefix(uri, prefix)
	if strings.Contains(tag, "/") {
		return ""
	}
	return tag
}
