package tool

import "github.com/hupe1980/agentswarm/core"

// saveArtifactTool persists text content to the run's artifact store.
type saveArtifactTool struct{}

// NewSaveArtifactTool creates a tool that writes an artifact.
func NewSaveArtifactTool() Tool {
	return &saveArtifactTool{}
}

// Name returns the tool identifier.
func (t *saveArtifactTool) Name() string { return "save_artifact" }

// Description returns the tool description shown to models.
func (t *saveArtifactTool) Description() string {
	return "Save text content as a named artifact of this run."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *saveArtifactTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Artifact identifier",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to store",
			},
		},
		"required": []string{"id", "content"},
	}
}

// Call writes the artifact, overwriting any previous version.
func (t *saveArtifactTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, NewToolError(t.Name(), "id must be a non-empty string", "VALIDATION_ERROR")
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, NewToolError(t.Name(), "content must be a string", "VALIDATION_ERROR")
	}

	if err := toolCtx.SaveArtifact(id, []byte(content)); err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	return map[string]any{"saved": true, "id": id, "size": len(content)}, nil
}

// loadArtifactTool reads an artifact back as text.
type loadArtifactTool struct{}

// NewLoadArtifactTool creates a tool that reads an artifact.
func NewLoadArtifactTool() Tool {
	return &loadArtifactTool{}
}

// Name returns the tool identifier.
func (t *loadArtifactTool) Name() string { return "load_artifact" }

// Description returns the tool description shown to models.
func (t *loadArtifactTool) Description() string {
	return "Load the content of a named artifact of this run."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *loadArtifactTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Artifact identifier",
			},
		},
		"required": []string{"id"},
	}
}

// Call loads the artifact content.
func (t *loadArtifactTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, NewToolError(t.Name(), "id must be a non-empty string", "VALIDATION_ERROR")
	}

	data, err := toolCtx.LoadArtifact(id)
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	return map[string]any{"id": id, "content": string(data)}, nil
}

// listArtifactsTool enumerates the run's stored artifacts.
type listArtifactsTool struct{}

// NewListArtifactsTool creates a tool that lists artifact ids.
func NewListArtifactsTool() Tool {
	return &listArtifactsTool{}
}

// Name returns the tool identifier.
func (t *listArtifactsTool) Name() string { return "list_artifacts" }

// Description returns the tool description shown to models.
func (t *listArtifactsTool) Description() string {
	return "List the identifiers of all artifacts stored for this run."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *listArtifactsTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// Call lists stored artifact ids.
func (t *listArtifactsTool) Call(toolCtx *core.ToolContext, _ map[string]any) (any, error) {
	ids, err := toolCtx.ListArtifacts()
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), "EXECUTION_ERROR")
	}

	return map[string]any{"artifacts": ids, "count": len(ids)}, nil
}
