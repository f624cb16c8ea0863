package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

func TestSystemPrompt(t *testing.T) {
	blocks := systemPrompt([]core.Message{
		core.NewSystemMessage("You are helpful."),
		core.NewUserMessage("hi"),
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, "You are helpful.", blocks[0].Text)
}

func TestBuildMessagesSkipsSystem(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.NewSystemMessage("You are helpful."),
		core.NewUserMessage("hi"),
		core.NewAssistantMessage("assistant", "hello"),
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
}

func TestBuildMessagesMergesToolResults(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.NewUserMessage("weather in Berlin and Paris?"),
		{
			Role: core.RoleAssistant,
			ToolCalls: []core.ToolCall{
				{ID: "call_1", Type: "function", Function: core.FunctionCall{Name: "get_weather", Arguments: `{"city":"Berlin"}`}},
				{ID: "call_2", Type: "function", Function: core.FunctionCall{Name: "get_weather", Arguments: `{"city":"Paris"}`}},
			},
		},
		core.NewToolMessage("call_1", "get_weather", "sunny"),
		core.NewToolMessage("call_2", "get_weather", "rainy"),
	})

	// user, assistant tool_use turn, then one user message with both results
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 2)
	assert.NotNil(t, msgs[1].Content[0].OfToolUse)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	assert.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.NotNil(t, msgs[2].Content[1].OfToolResult)
}

func TestAssistantBlocksParsesArguments(t *testing.T) {
	blocks := assistantBlocks(core.Message{
		Role:    core.RoleAssistant,
		Content: "checking",
		ToolCalls: []core.ToolCall{
			{ID: "call_1", Type: "function", Function: core.FunctionCall{Name: "get_weather", Arguments: `{"city":"Berlin"}`}},
			{ID: "call_2", Type: "function", Function: core.FunctionCall{Name: "noop"}},
		},
	})

	require.Len(t, blocks, 3)
	assert.NotNil(t, blocks[0].OfText)
	require.NotNil(t, blocks[1].OfToolUse)
	assert.Equal(t, "call_1", blocks[1].OfToolUse.ID)
	require.NotNil(t, blocks[2].OfToolUse)
	// empty arguments become an empty object input
	assert.Equal(t, map[string]any{}, blocks[2].OfToolUse.Input)
}

func TestBuildInputSchema(t *testing.T) {
	input := buildInputSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
		"required":   []any{"city"},
	})

	assert.NotNil(t, input.Properties)
	assert.Equal(t, []string{"city"}, input.Required)
}

func TestBuildToolChoice(t *testing.T) {
	assert.Nil(t, buildToolChoice("", nil))

	auto := buildToolChoice(model.ToolChoiceAuto, nil)
	require.NotNil(t, auto)
	assert.NotNil(t, auto.OfAuto)

	none := buildToolChoice(model.ToolChoiceNone, nil)
	require.NotNil(t, none)
	assert.NotNil(t, none.OfNone)

	required := buildToolChoice(model.ToolChoiceRequired, nil)
	require.NotNil(t, required)
	assert.NotNil(t, required.OfAny)

	named := buildToolChoice("get_weather", nil)
	require.NotNil(t, named)
	require.NotNil(t, named.OfTool)
	assert.Equal(t, "get_weather", named.OfTool.Name)

	serial := false
	sequential := buildToolChoice("", &serial)
	require.NotNil(t, sequential)
	require.NotNil(t, sequential.OfAuto)
	assert.True(t, sequential.OfAuto.DisableParallelToolUse.Value)
}

func TestBuildParamsStructuredOutputForcesTool(t *testing.T) {
	m := NewModel()

	params := m.buildParams(model.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		ResponseFormat: &model.ResponseFormat{
			Name:   "weather_report",
			Schema: map[string]any{"type": "object"},
		},
	})

	require.Len(t, params.Tools, 1)
	require.NotNil(t, params.Tools[0].OfTool)
	assert.Equal(t, "weather_report", params.Tools[0].OfTool.Name)
	require.NotNil(t, params.ToolChoice.OfTool)
	assert.Equal(t, "weather_report", params.ToolChoice.OfTool.Name)
}

func TestBuildParamsOverrides(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "claude-3-5-haiku-20241022"
		o.Temperature = 0.2
		o.MaxTokens = 1024
	})

	temp := 0.9
	params := m.buildParams(model.Request{
		Model:       "claude-sonnet-4-20250514",
		Messages:    []core.Message{core.NewUserMessage("hi")},
		Temperature: &temp,
		MaxTokens:   256,
	})

	assert.Equal(t, anthropic.Model("claude-sonnet-4-20250514"), params.Model)
	assert.Equal(t, 0.9, params.Temperature.Value)
	assert.Equal(t, int64(256), params.MaxTokens)
}

func TestMapStopReason(t *testing.T) {
	assert.Equal(t, "tool_calls", mapStopReason(anthropic.StopReasonToolUse))
	assert.Equal(t, "stop", mapStopReason(anthropic.StopReasonEndTurn))
	assert.Equal(t, "stop", mapStopReason(anthropic.StopReasonStopSequence))
	assert.Equal(t, "length", mapStopReason(anthropic.StopReasonMaxTokens))
	assert.Equal(t, "stop", mapStopReason(""))
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.Model = "claude-3-5-haiku-20241022" })

	info := m.Info()

	assert.Equal(t, "claude-3-5-haiku-20241022", info.Name)
	assert.Equal(t, "anthropic", info.Provider)
	assert.True(t, info.SupportsTools)
}
