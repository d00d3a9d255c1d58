package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agent-gateway/internal/domain"
)

// ToolName matches the name reasoning models are commonly prompted with for Tavily.
const ToolName = "tavily_search_results_json"

// Searcher is the search capability a Tool wraps. *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Tool exposes web search to the reasoning agent with a fixed result cap.
type Tool struct {
	searcher   Searcher
	maxResults int
}

func NewTool(s Searcher, maxResults int) (*Tool, error) {
	if s == nil {
		return nil, errors.New("tavily: searcher must not be nil")
	}
	if maxResults <= 0 {
		return nil, errors.New("tavily: max results must be positive")
	}
	return &Tool{searcher: s, maxResults: maxResults}, nil
}

// MaxResults reports the result cap applied to every call.
func (t *Tool) MaxResults() int {
	return t.maxResults
}

func (t *Tool) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Type: "function",
		Function: domain.FunctionSpec{
			Name: ToolName,
			Description: "A search engine optimized for comprehensive, accurate, and trusted results. " +
				"Useful for when you need to answer questions about current events. Input should be a search query.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "search query to look up",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

// Call decodes {"query": "..."} and returns the results as a JSON array.
func (t *Tool) Call(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("tavily: decode tool arguments: %w", err)
	}
	results, err := t.searcher.Search(ctx, args.Query, t.maxResults)
	if err != nil {
		return "", err
	}
	if results == nil {
		results = []Result{}
	}
	out, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("tavily: encode results: %w", err)
	}
	return string(out), nil
}
