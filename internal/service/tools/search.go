package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/patil-aryan/lumos/internal/core"
)

// Searcher is the slice of the search orchestrator the tools need.
type Searcher interface {
	Search(ctx context.Context, query core.Query) (core.SearchOutcome, error)
}

var vectorSearchDef = core.Tool{
	Type: "function",
	Function: core.Function{
		Name:        ToolVectorSearch,
		Description: "Semantic similarity search over ingested document chunks. Best for conceptual questions about document content.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Natural language search query"},
				"limit": {"type": "integer", "description": "Maximum number of chunks to return", "default": 10}
			},
			"required": ["query"]
		}`),
	},
}

var graphSearchDef = core.Tool{
	Type: "function",
	Function: core.Function{
		Name:        ToolGraphSearch,
		Description: "Search the temporal knowledge graph for facts about entities and their relationships. Best for questions about who, when and how things are connected.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Natural language search query"}
			},
			"required": ["query"]
		}`),
	},
}

var hybridSearchDef = core.Tool{
	Type: "function",
	Function: core.Function{
		Name:        ToolHybridSearch,
		Description: "Combined search: document chunks enriched with related knowledge graph facts. The default choice when unsure.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Natural language search query"},
				"limit": {"type": "integer", "description": "Maximum number of chunks to return", "default": 10}
			},
			"required": ["query"]
		}`),
	},
}

type searchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func searchHandler(searcher Searcher, mode core.SearchMode) Handler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var parsed searchArgs
		if err := json.Unmarshal(args, &parsed); err != nil {
			return "", fmt.Errorf("parse %s args: %w", mode, err)
		}

		outcome, err := searcher.Search(ctx, core.Query{
			Text:  parsed.Query,
			Mode:  mode,
			Limit: parsed.Limit,
		})
		if err != nil {
			return "", err
		}
		return marshalResult(outcome)
	}
}

func vectorSearchHandler(searcher Searcher) Handler {
	return searchHandler(searcher, core.SearchModeVector)
}

func graphSearchHandler(searcher Searcher) Handler {
	return searchHandler(searcher, core.SearchModeGraph)
}

func hybridSearchHandler(searcher Searcher) Handler {
	return searchHandler(searcher, core.SearchModeHybrid)
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(data), nil
}
