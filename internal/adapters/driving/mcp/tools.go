package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// SearchInput is the input schema for the search_passages tool.
type SearchInput struct {
	Tag   string `json:"tag" jsonschema:"the corpus to search, e.g. bluebook or redbook"`
	Query string `json:"query" jsonschema:"the natural-language question or phrase"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// SearchOutput is the output schema for the search_passages tool.
type SearchOutput struct {
	Tag     string         `json:"tag"`
	Matches []domain.Match `json:"matches"`
	Count   int            `json:"count"`
}

// AskInput is the input schema for the ask_question tool.
type AskInput struct {
	Tag      string `json:"tag" jsonschema:"the corpus to answer from"`
	Question string `json:"question" jsonschema:"the question to answer"`
	K        int    `json:"k,omitempty" jsonschema:"number of passages supplied as context"`
}

// AskOutput is the output schema for the ask_question tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Model   string         `json:"model"`
	Sources []domain.Match `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_passages",
		Description: "Find the style-manual passages most similar to a query, with section and page",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_question",
			Description: "Answer a citation question from retrieved style-manual passages",
		}, s.handleAsk)
	}
}

// handleSearch handles the search_passages tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	matches, err := s.ports.Query.Query(ctx, input.Tag, input.Query, input.K)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if matches == nil {
		matches = []domain.Match{}
	}

	return nil, SearchOutput{
		Tag:     input.Tag,
		Matches: matches,
		Count:   len(matches),
	}, nil
}

// handleAsk handles the ask_question tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Ask(ctx, input.Tag, input.Question, input.K)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Sources: answer.Matches,
	}, nil
}
