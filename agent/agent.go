package agent

import (
	"fmt"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/tool"
)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// Instruction is the system prompt, static or dynamically resolved
	// against the context variables every turn.
	Instruction Instruction

	// Tools lists the callables exposed to the model, in manifest order.
	// Names must be unique within the agent.
	Tools []tool.Tool

	// OutputType binds the agent to a structured final answer. Mutually
	// exclusive with Tools.
	OutputType *OutputType

	// ParallelToolCalls tells the backend it may batch several tool calls
	// into one turn. Execution stays sequential either way.
	ParallelToolCalls bool

	// ToolChoice is "auto", "none", "required" or the name of a registered
	// tool the model must call. Empty leaves the backend default.
	ToolChoice string

	// Temperature overrides the sampling temperature when non-nil.
	Temperature *float64

	// Handoff is the next-agent policy consulted on turns without tool calls.
	Handoff *Handoff
}

// Agent is an immutable configuration for one conversational role: its
// identity, model, instructions and capabilities. Build once via New, then
// share freely; concurrent runner invocations never mutate an Agent.
type Agent struct {
	name        string
	model       string
	instruction Instruction
	tools       []tool.Tool
	toolIndex   map[string]tool.Tool
	outputType  *OutputType
	parallel    bool
	toolChoice  string
	temperature *float64
	handoff     *Handoff
}

// New creates an agent named name backed by the given model identifier. The
// model string is passed through to the backend; leave it empty to use the
// backend's default. Conflicting configuration fails with a
// *ConfigurationError.
func New(name, modelName string, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Instruction:       NewInstructionFromText(fmt.Sprintf("You are %s, a helpful agent.", name)),
		ParallelToolCalls: true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, newConfigurationError(name, "name must not be empty")
	}

	if opts.OutputType != nil && len(opts.Tools) > 0 {
		return nil, newConfigurationError(name, "tools and output type are mutually exclusive")
	}

	if opts.OutputType != nil && opts.OutputType.compileErr != nil {
		return nil, newConfigurationError(name, "invalid output schema %q: %v", opts.OutputType.name, opts.OutputType.compileErr)
	}

	toolIndex := make(map[string]tool.Tool, len(opts.Tools))

	for _, t := range opts.Tools {
		if t == nil {
			return nil, newConfigurationError(name, "nil tool registered")
		}

		if t.Name() == "" {
			return nil, newConfigurationError(name, "tool with empty name registered")
		}

		if _, exists := toolIndex[t.Name()]; exists {
			return nil, newConfigurationError(name, "duplicate tool name %q", t.Name())
		}

		toolIndex[t.Name()] = t
	}

	switch opts.ToolChoice {
	case "", model.ToolChoiceAuto, model.ToolChoiceNone, model.ToolChoiceRequired:
	default:
		if _, exists := toolIndex[opts.ToolChoice]; !exists {
			return nil, newConfigurationError(name, "forced tool choice %q does not match a registered tool", opts.ToolChoice)
		}
	}

	return &Agent{
		name:        name,
		model:       modelName,
		instruction: opts.Instruction,
		tools:       append([]tool.Tool(nil), opts.Tools...),
		toolIndex:   toolIndex,
		outputType:  opts.OutputType,
		parallel:    opts.ParallelToolCalls,
		toolChoice:  opts.ToolChoice,
		temperature: opts.Temperature,
		handoff:     opts.Handoff,
	}, nil
}

// Name returns the agent's identifier used for transcript attribution.
func (a *Agent) Name() string { return a.name }

// Model returns the backend model identifier, possibly empty.
func (a *Agent) Model() string { return a.model }

// Tools returns the registered tools in manifest order.
func (a *Agent) Tools() []tool.Tool {
	return append([]tool.Tool(nil), a.tools...)
}

// Tool retrieves a registered tool by exact name.
func (a *Agent) Tool(name string) (tool.Tool, bool) {
	t, exists := a.toolIndex[name]
	return t, exists
}

// HasTools reports whether the agent exposes any tools.
func (a *Agent) HasTools() bool { return len(a.tools) > 0 }

// OutputType returns the structured output contract, or nil.
func (a *Agent) OutputType() *OutputType { return a.outputType }

// ParallelToolCalls reports whether the backend may batch tool calls.
func (a *Agent) ParallelToolCalls() bool { return a.parallel }

// ToolChoice returns the tool-choice constraint, possibly empty.
func (a *Agent) ToolChoice() string { return a.toolChoice }

// Temperature returns the sampling temperature override, or nil.
func (a *Agent) Temperature() *float64 { return a.temperature }

// Handoff returns the next-agent policy, or nil.
func (a *Agent) Handoff() *Handoff { return a.handoff }

// ResolveInstructions produces the final system prompt for a turn, invoking
// the dynamic form with the current context variables when configured.
func (a *Agent) ResolveInstructions(vars core.ContextVars) (string, error) {
	return a.instruction.Resolve(vars)
}

// ToolManifest derives the backend-consumable tool declarations. The result
// is deterministic: tools appear in registration order with their declared
// parameter schemas.
func (a *Agent) ToolManifest() []model.ToolDefinition {
	if len(a.tools) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return defs
}
