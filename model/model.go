package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentswarm/core"
)

// Tool choice directives understood by all providers. A registered tool name
// may be passed instead to force that specific tool.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// ResponseFormat asks the provider for schema-constrained JSON output.
type ResponseFormat struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

// Request captures the normalized model input produced by the runner.
type Request struct {
	// Model optionally overrides the provider's default model name.
	Model string `json:"model,omitempty"`

	// Messages is the full transcript sent to the provider, system first.
	Messages []core.Message `json:"messages"`

	// Tools lists the callable functions exposed for this request.
	Tools []ToolDefinition `json:"tools,omitempty"`

	// ToolChoice is "auto", "none", "required", a registered tool name, or
	// empty for the provider default.
	ToolChoice string `json:"tool_choice,omitempty"`

	// ParallelToolCalls toggles multi-call responses; nil leaves the
	// provider default in place.
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`

	// ResponseFormat requests structured output. Mutually exclusive with
	// Tools by construction upstream.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Temperature overrides the sampling temperature when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps the completion size; zero means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Usage captures token usage statistics for a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates counts from another usage sample.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Response is the final completion returned by a provider.
type Response struct {
	ID           string       `json:"id"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        Usage        `json:"usage"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the runner to drive generation.
// Generate blocks until the provider returns a complete response; transient
// provider failures surface as errors without retries.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples. It
// serves queued responses in order first, then prompt-keyed canned replies,
// then a deterministic fallback.
type MockModel struct {
	info      Info
	responses map[string]string
	queue     []Response
	requests  []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// EnqueueResponse appends a scripted response served before any keyed lookup.
func (m *MockModel) EnqueueResponse(resp Response) { m.queue = append(m.queue, resp) }

// EnqueueText is shorthand for queueing a plain assistant text reply.
func (m *MockModel) EnqueueText(text string) {
	m.EnqueueResponse(Response{
		Message:      core.Message{Role: core.RoleAssistant, Content: text},
		FinishReason: "stop",
	})
}

// EnqueueToolCalls is shorthand for queueing an assistant tool call reply.
func (m *MockModel) EnqueueToolCalls(calls ...core.ToolCall) {
	m.EnqueueResponse(Response{
		Message:      core.Message{Role: core.RoleAssistant, ToolCalls: calls},
		FinishReason: "tool_calls",
	})
}

// Requests returns every request the mock has served, in order.
func (m *MockModel) Requests() []Request { return m.requests }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		resp := m.queue[0]
		m.queue = m.queue[1:]

		return &resp, nil
	}

	input := req.Messages[len(req.Messages)-1].Content

	full := m.responses[input]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", input)
	}

	return &Response{
		Message:      core.Message{Role: core.RoleAssistant, Content: full},
		FinishReason: "stop",
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
