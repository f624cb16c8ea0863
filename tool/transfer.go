package tool

import (
	"fmt"

	"github.com/hupe1980/agentswarm/core"
)

// transferToAgentTool lets the model hand the conversation to any agent it
// names. The target is staged on the ToolContext and resolved by name once
// the request completes.
type transferToAgentTool struct{}

// NewTransferToAgentTool creates the generic transfer tool. Use
// NewHandoffTool when the target agent is fixed.
func NewTransferToAgentTool() Tool {
	return &transferToAgentTool{}
}

// Name returns the tool identifier.
func (t *transferToAgentTool) Name() string { return "transfer_to_agent" }

// Description returns the tool description shown to models.
func (t *transferToAgentTool) Description() string {
	return "Transfer the conversation to another agent by name."
}

// Parameters returns the JSON schema for the tool arguments.
func (t *transferToAgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent": map[string]any{
				"type":        "string",
				"description": "Name of the agent to transfer to",
			},
		},
		"required": []string{"agent"},
	}
}

// Call stages the transfer on the tool context.
func (t *transferToAgentTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	name, ok := args["agent"].(string)
	if !ok || name == "" {
		return nil, NewToolError(t.Name(), "agent must be a non-empty string", "VALIDATION_ERROR")
	}

	toolCtx.TransferToAgent(name)

	return map[string]any{"transferred": true, "agent": name}, nil
}

// handoffTool hands the conversation to one fixed agent. Exposing one such
// tool per reachable agent gives the model an explicit, named escape hatch
// ("transfer_to_sales") instead of a free-form target argument.
type handoffTool struct {
	target      string
	description string
}

// NewHandoffTool creates a tool named "transfer_to_<target>" that hands the
// conversation to the fixed target agent. The description defaults to a
// sensible explanation when empty.
func NewHandoffTool(target string, description string) Tool {
	if description == "" {
		description = fmt.Sprintf("Transfer the conversation to the %s agent.", target)
	}

	return &handoffTool{target: target, description: description}
}

// Name returns the tool identifier.
func (t *handoffTool) Name() string { return fmt.Sprintf("transfer_to_%s", t.target) }

// Description returns the tool description shown to models.
func (t *handoffTool) Description() string { return t.description }

// Parameters returns the JSON schema for the tool arguments.
func (t *handoffTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// Call stages the transfer on the tool context.
func (t *handoffTool) Call(toolCtx *core.ToolContext, _ map[string]any) (any, error) {
	toolCtx.TransferToAgent(t.target)

	return map[string]any{"transferred": true, "agent": t.target}, nil
}
