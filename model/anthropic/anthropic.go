// Package anthropic implements model.Model on top of the Anthropic Messages
// API. System messages become the request system prompt, tool results travel
// back as tool_result blocks, and structured output is obtained by forcing a
// single schema-shaped tool.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Per-request overrides on model.Request take
// precedence.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. It blocks until the API returns a complete
// response.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := m.buildParams(req)

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	msg := core.Message{Role: core.RoleAssistant}
	structuredName := ""
	if req.ResponseFormat != nil {
		structuredName = req.ResponseFormat.Name
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			msg.Content += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := "{}"
			if raw, err := json.Marshal(toolBlock.Input); err == nil && len(raw) > 0 && string(raw) != "null" {
				args = string(raw)
			}
			// The forced structured-output tool is an encoding detail; its
			// input is the structured payload, not a call to execute.
			if structuredName != "" && toolBlock.Name == structuredName {
				msg.Content = args
				continue
			}
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
				ID:   toolBlock.ID,
				Type: "function",
				Function: core.FunctionCall{
					Name:      toolBlock.Name,
					Arguments: args,
				},
			})
		}
	}

	finishReason := mapStopReason(resp.StopReason)
	if structuredName != "" && !msg.HasToolCalls() {
		finishReason = "stop"
	}

	return &model.Response{
		ID:           resp.ID,
		Message:      msg,
		FinishReason: finishReason,
		Usage: model.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// buildParams assembles the Anthropic request parameters.
func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	modelID := m.opts.Model
	if req.Model != "" {
		modelID = anthropic.Model(req.Model)
	}
	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := m.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:       modelID,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if system := systemPrompt(req.Messages); len(system) > 0 {
		params.System = system
	}

	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
		if choice := buildToolChoice(req.ToolChoice, req.ParallelToolCalls); choice != nil {
			params.ToolChoice = *choice
		}
	}

	// Structured output has no native response format on this API; force a
	// single tool shaped like the schema and decode its input as the payload.
	if req.ResponseFormat != nil {
		params.Tools = []anthropic.ToolUnionParam{{OfTool: &anthropic.ToolParam{
			Name:        req.ResponseFormat.Name,
			Description: anthropic.String("Record the final answer in the required shape."),
			InputSchema: buildInputSchema(req.ResponseFormat.Schema),
		}}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.ResponseFormat.Name},
		}
	}

	return params
}

// systemPrompt collects system role messages into system prompt blocks.
func systemPrompt(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range messages {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

// buildMessages converts the normalized transcript into Anthropic messages.
// Consecutive tool messages collapse into a single user message carrying one
// tool_result block per answered call, immediately after the assistant turn
// that issued them.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) == 0 {
			return
		}
		out = append(out, anthropic.NewUserMessage(pendingResults...))
		pendingResults = nil
	}

	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			continue
		case core.RoleTool:
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
		case core.RoleAssistant:
			flushResults()
			blocks := assistantBlocks(msg)
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			flushResults()
			if msg.Content != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			}
		}
	}
	flushResults()

	return out
}

// assistantBlocks renders an assistant message as text plus tool_use blocks.
func assistantBlocks(msg core.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}
	for _, call := range msg.ToolCalls {
		var input any = map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				input = call.Function.Arguments
			}
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Function.Name))
	}
	return blocks
}

// buildTools converts tool definitions to Anthropic tool declarations.
func buildTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		tool := anthropic.ToolParam{
			Name:        def.Function.Name,
			InputSchema: buildInputSchema(def.Function.Parameters),
		}
		if def.Function.Description != "" {
			tool.Description = anthropic.String(def.Function.Description)
		}
		tools[i] = anthropic.ToolUnionParam{OfTool: &tool}
	}
	return tools
}

// buildInputSchema lifts a JSON Schema object into the tool input schema
// param. Required may arrive as []string or []any after a JSON round trip.
func buildInputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	input := anthropic.ToolInputSchemaParam{}
	if schema == nil {
		return input
	}
	if properties, ok := schema["properties"]; ok {
		input.Properties = properties
	}
	switch required := schema["required"].(type) {
	case []string:
		input.Required = required
	case []any:
		for _, r := range required {
			if s, ok := r.(string); ok {
				input.Required = append(input.Required, s)
			}
		}
	}
	return input
}

// buildToolChoice maps the normalized tool choice directive onto the SDK
// union. Any value other than the directive keywords forces that named tool.
func buildToolChoice(choice string, parallel *bool) *anthropic.ToolChoiceUnionParam {
	auto := anthropic.ToolChoiceAutoParam{}
	if parallel != nil {
		auto.DisableParallelToolUse = anthropic.Bool(!*parallel)
	}

	switch choice {
	case "":
		if parallel == nil {
			return nil
		}
		return &anthropic.ToolChoiceUnionParam{OfAuto: &auto}
	case model.ToolChoiceAuto:
		return &anthropic.ToolChoiceUnionParam{OfAuto: &auto}
	case model.ToolChoiceNone:
		return &anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	case model.ToolChoiceRequired:
		required := anthropic.ToolChoiceAnyParam{DisableParallelToolUse: auto.DisableParallelToolUse}
		return &anthropic.ToolChoiceUnionParam{OfAny: &required}
	default:
		tool := anthropic.ToolChoiceToolParam{Name: choice, DisableParallelToolUse: auto.DisableParallelToolUse}
		return &anthropic.ToolChoiceUnionParam{OfTool: &tool}
	}
}

// mapStopReason normalizes Anthropic stop reasons onto the finish reasons the
// rest of the module expects.
func mapStopReason(reason anthropic.StopReason) string {
	switch reason {
	case anthropic.StopReasonToolUse:
		return "tool_calls"
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return "stop"
	case anthropic.StopReasonMaxTokens:
		return "length"
	default:
		if reason == "" {
			return "stop"
		}
		return string(reason)
	}
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
