package tool

import "github.com/hupe1980/agentswarm/core"

// setContextValueTool stages a context variable write. The patch is merged
// into the run state after the call completes, so later turns and dynamic
// instructions observe it.
type setContextValueTool struct{}

// NewSetContextValueTool creates a tool that writes a context variable.
func NewSetContextValueTool() Tool {
	return &setContextValueTool{}
}

// Name returns the tool identifier.
func (t *setContextValueTool) Name() string { return "set_context_value" }

// Description returns the tool description shown to models.
func (t *setContextValueTool) Description() string {
	return "Store a value in the shared context under the given key."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *setContextValueTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "Context key to write",
			},
			"value": map[string]any{
				"description": "Value to store",
			},
		},
		"required": []string{"key", "value"},
	}
}

// Call stages the write on the tool context.
func (t *setContextValueTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, NewToolError(t.Name(), "key must be a non-empty string", "VALIDATION_ERROR")
	}

	toolCtx.SetVar(key, args["value"])

	return map[string]any{"key": key, "value": args["value"]}, nil
}

// getContextValueTool reads from the invocation's context snapshot.
type getContextValueTool struct{}

// NewGetContextValueTool creates a tool that reads a context variable.
func NewGetContextValueTool() Tool {
	return &getContextValueTool{}
}

// Name returns the tool identifier.
func (t *getContextValueTool) Name() string { return "get_context_value" }

// Description returns the tool description shown to models.
func (t *getContextValueTool) Description() string {
	return "Read a value from the shared context by key."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *getContextValueTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "Context key to read",
			},
		},
		"required": []string{"key"},
	}
}

// Call reads from the snapshot, reporting existence alongside the value.
func (t *getContextValueTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	key, ok := args["key"].(string)
	if !ok || key == "" {
		return nil, NewToolError(t.Name(), "key must be a non-empty string", "VALIDATION_ERROR")
	}

	value, exists := toolCtx.GetVar(key)

	return map[string]any{"key": key, "value": value, "exists": exists}, nil
}
