package tool

import "github.com/hupe1980/agentswarm/core"

// saveMemoryTool persists a note to the run's memory store for later recall.
type saveMemoryTool struct{}

// NewSaveMemoryTool creates a tool that stores content in the memory store.
func NewSaveMemoryTool() Tool {
	return &saveMemoryTool{}
}

// Name returns the tool identifier.
func (t *saveMemoryTool) Name() string { return "save_memory" }

// Description returns the tool description shown to models.
func (t *saveMemoryTool) Description() string {
	return "Save a note to long-term memory so it can be recalled later."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *saveMemoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Text to remember",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "Optional topic label",
			},
		},
		"required": []string{"content"},
	}
}

// Call stores the note, returning the assigned memory id.
func (t *saveMemoryTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, NewToolError(t.Name(), "content must be a non-empty string", "VALIDATION_ERROR")
	}

	var metadata map[string]any
	if topic, ok := args["topic"].(string); ok && topic != "" {
		metadata = map[string]any{"topic": topic}
	}

	id, err := toolCtx.StoreMemory(content, metadata)
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	return map[string]any{"stored": true, "id": id}, nil
}

// searchMemoryTool recalls notes from the run's memory store.
type searchMemoryTool struct{}

// NewSearchMemoryTool creates a tool that queries the memory store.
func NewSearchMemoryTool() Tool {
	return &searchMemoryTool{}
}

// Name returns the tool identifier.
func (t *searchMemoryTool) Name() string { return "search_memory" }

// Description returns the tool description shown to models.
func (t *searchMemoryTool) Description() string {
	return "Search long-term memory for notes relevant to a query."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *searchMemoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results (default 5)",
			},
		},
		"required": []string{"query"},
	}
}

// Call runs the recall query, best matches first.
func (t *searchMemoryTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, NewToolError(t.Name(), "query must be a non-empty string", "VALIDATION_ERROR")
	}

	limit := 5
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	hits, err := toolCtx.SearchMemory(query, limit)
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	results := make([]map[string]any, 0, len(hits))
	for _, hit := range hits {
		results = append(results, map[string]any{
			"id":      hit.ID,
			"content": hit.Content,
			"score":   hit.Score,
		})
	}

	return map[string]any{"results": results, "count": len(results)}, nil
}
