package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("be brief")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, "be brief", sys.Content)

	user := NewUserMessage("hi")
	assert.Equal(t, RoleUser, user.Role)

	call := ToolCall{ID: "call_1", Type: "function", Function: FunctionCall{Name: "get_weather", Arguments: `{"city":"Berlin"}`}}
	asst := NewAssistantMessage("triage", "", call)
	assert.Equal(t, RoleAssistant, asst.Role)
	assert.Equal(t, "triage", asst.Sender)
	assert.True(t, asst.HasToolCalls())

	tool := NewToolMessage("call_1", "get_weather", "sunny")
	assert.Equal(t, RoleTool, tool.Role)
	assert.Equal(t, "call_1", tool.ToolCallID)
	assert.Equal(t, "get_weather", tool.ToolName)
	assert.False(t, tool.HasToolCalls())
}

func TestMessageJSONShape(t *testing.T) {
	msg := NewAssistantMessage("sales", "done")

	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	assert.Equal(t, "assistant", raw["role"])
	assert.Equal(t, "sales", raw["sender"])
	assert.NotContains(t, raw, "tool_calls")
	assert.NotContains(t, raw, "tool_call_id")
	assert.NotContains(t, raw, "tool_name")
}

func TestToolMessageJSONRoundTrip(t *testing.T) {
	msg := NewToolMessage("call_9", "lookup", `{"ok":true}`)

	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, msg, decoded)
}
