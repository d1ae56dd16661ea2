package tool

import (
	"context"
	"fmt"

	contractx "github.com/pattarin/BankPilot-Conversational-Banking/agent/contract"
	ragx "github.com/pattarin/BankPilot-Conversational-Banking/agent/rag"
	statex "github.com/pattarin/BankPilot-Conversational-Banking/agent/state"
)

const ToolKnowledgeSearch = "knowledge_base.search"

type KnowledgeSearchOutput struct {
	Query   string             `json:"query"`
	Results []ragx.SearchResult `json:"results"`
}

// KnowledgeSearchTool wraps the retrieval connector. An empty result
// set is a successful outcome; only connector failures become errors on
// the enclosing ToolCall.
type KnowledgeSearchTool struct {
	Searcher ragx.Searcher
}

func (t *KnowledgeSearchTool) Name() string { return ToolKnowledgeSearch }

func (t *KnowledgeSearchTool) Execute(ctx context.Context, params map[string]statex.EntityValue) (any, error) {
	query, err := stringParam(params, "query")
	if err != nil {
		return nil, err
	}

	opts := ragx.SearchOptions{}
	if v, ok := params["top_k"]; ok && v.Kind == statex.EntityNumber {
		opts.TopK = int(v.Num)
	}
	if v, ok := params["threshold"]; ok && v.Kind == statex.EntityNumber {
		opts.Threshold = v.Num
	}

	results, err := t.Searcher.Search(ctx, query, opts)
	if err != nil {
		if ragx.IsRetrievalError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", contractx.ErrRetrieval, err)
	}
	return KnowledgeSearchOutput{Query: query, Results: results}, nil
}
