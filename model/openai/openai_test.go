package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

func TestBuildMessagesRoutesRoles(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.NewSystemMessage("You are helpful."),
		core.NewUserMessage("hi"),
		core.NewAssistantMessage("assistant", "hello"),
		core.NewToolMessage("call_1", "get_weather", "sunny"),
	})

	require.Len(t, msgs, 4)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
	assert.NotNil(t, msgs[3].OfTool)
}

func TestBuildMessagesAssistantToolCalls(t *testing.T) {
	msgs := buildMessages([]core.Message{
		{
			Role:    core.RoleAssistant,
			Content: "checking",
			ToolCalls: []core.ToolCall{
				{ID: "call_1", Type: "function", Function: core.FunctionCall{Name: "get_weather", Arguments: `{"city":"Berlin"}`}},
			},
		},
	})

	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].OfAssistant)
	require.Len(t, msgs[0].OfAssistant.ToolCalls, 1)
	call := msgs[0].OfAssistant.ToolCalls[0]
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "get_weather", call.Function.Name)
	assert.Equal(t, `{"city":"Berlin"}`, call.Function.Arguments)
	assert.Equal(t, "checking", msgs[0].OfAssistant.Content.OfString.Value)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]model.ToolDefinition{{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        "get_weather",
			Description: "Fetch current weather.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"city": map[string]any{"type": "string"}},
				"required":   []string{"city"},
			},
		},
	}})

	require.Len(t, tools, 1)
	assert.Equal(t, "get_weather", tools[0].Function.Name)
	assert.Equal(t, "Fetch current weather.", tools[0].Function.Description.Value)
	assert.NotNil(t, tools[0].Function.Parameters)
}

func TestBuildToolChoice(t *testing.T) {
	assert.Nil(t, buildToolChoice(""))

	auto := buildToolChoice(model.ToolChoiceAuto)
	require.NotNil(t, auto)
	assert.Equal(t, "auto", auto.OfAuto.Value)

	required := buildToolChoice(model.ToolChoiceRequired)
	require.NotNil(t, required)
	assert.Equal(t, "required", required.OfAuto.Value)

	named := buildToolChoice("get_weather")
	require.NotNil(t, named)
	require.NotNil(t, named.OfChatCompletionNamedToolChoice)
	assert.Equal(t, "get_weather", named.OfChatCompletionNamedToolChoice.Function.Name)
}

func TestBuildParamsOverrides(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4o"
		o.Temperature = 0.2
		o.MaxCompletionTokens = 1024
	})

	temp := 0.9
	params := m.buildParams(model.Request{
		Model:       "gpt-4.1-mini",
		Messages:    []core.Message{core.NewUserMessage("hi")},
		Temperature: &temp,
		MaxTokens:   256,
	})

	assert.Equal(t, "gpt-4.1-mini", string(params.Model))
	assert.Equal(t, 0.9, params.Temperature.Value)
	assert.Equal(t, int64(256), params.MaxCompletionTokens.Value)
}

func TestBuildParamsDefaults(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4o"
		o.Temperature = 0.2
		o.MaxCompletionTokens = 1024
	})

	params := m.buildParams(model.Request{Messages: []core.Message{core.NewUserMessage("hi")}})

	assert.Equal(t, "gpt-4o", string(params.Model))
	assert.Equal(t, 0.2, params.Temperature.Value)
	assert.Equal(t, int64(1024), params.MaxCompletionTokens.Value)
	assert.Empty(t, params.Tools)
}

func TestBuildParamsResponseFormat(t *testing.T) {
	m := NewModel()

	params := m.buildParams(model.Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		ResponseFormat: &model.ResponseFormat{
			Name:   "weather_report",
			Schema: map[string]any{"type": "object"},
			Strict: true,
		},
	})

	require.NotNil(t, params.ResponseFormat.OfJSONSchema)
	assert.Equal(t, "weather_report", params.ResponseFormat.OfJSONSchema.JSONSchema.Name)
	assert.True(t, params.ResponseFormat.OfJSONSchema.JSONSchema.Strict.Value)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.Model = "gpt-4o" })

	info := m.Info()

	assert.Equal(t, "gpt-4o", info.Name)
	assert.Equal(t, "openai", info.Provider)
	assert.True(t, info.SupportsTools)
}
