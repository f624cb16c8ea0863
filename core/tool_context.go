package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentswarm/logging"
)

// ToolContextOptions configures the execution surface handed to a tool.
type ToolContextOptions struct {
	// AgentName is the name of the agent whose turn requested the call.
	AgentName string
	// CallID is the backend-assigned tool call identifier.
	CallID string
	// ToolName is the registered name the call was routed to.
	ToolName string
	// RunID scopes artifact and memory access for this run.
	RunID string
	// Artifacts is the optional artifact store bound to the run.
	Artifacts ArtifactStore
	// Memory is the optional memory store bound to the run.
	Memory MemoryStore
	// Logger receives tool-level diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ToolContext provides a constrained surface for tool implementations. It
// exposes a snapshot of the run's context variables and accumulates staged
// writes (variable patches, transfer requests) without mutating the run
// until the orchestrator applies them.
type ToolContext struct {
	ctx      context.Context
	vars     ContextVars
	patch    ContextVars
	transfer *string
	opts     ToolContextOptions
}

// NewToolContext constructs a tool context over a snapshot of vars. The
// snapshot is cloned, so concurrent or sequential tool invocations never
// alias each other's state.
func NewToolContext(ctx context.Context, vars ContextVars, optFns ...func(o *ToolContextOptions)) *ToolContext {
	opts := ToolContextOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &ToolContext{
		ctx:   ctx,
		vars:  vars.Clone(),
		patch: ContextVars{},
		opts:  opts,
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// AgentName returns the name of the agent that requested the call.
func (tc *ToolContext) AgentName() string { return tc.opts.AgentName }

// CallID returns the tool call identifier assigned by the backend.
func (tc *ToolContext) CallID() string { return tc.opts.CallID }

// ToolName returns the registered tool name the call was routed to.
func (tc *ToolContext) ToolName() string { return tc.opts.ToolName }

// RunID returns the run identifier scoping store access.
func (tc *ToolContext) RunID() string { return tc.opts.RunID }

// Logger returns the logger bound to the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.opts.Logger }

// Vars returns the context variable snapshot visible to this invocation,
// including writes staged through SetVar.
func (tc *ToolContext) Vars() ContextVars { return tc.vars }

// GetVar retrieves a single context variable from the snapshot.
func (tc *ToolContext) GetVar(key string) (any, bool) {
	v, ok := tc.vars[key]
	return v, ok
}

// SetVar stages a context variable write. The write is visible to the rest
// of this invocation immediately and merged into the run state after the
// tool completes.
func (tc *ToolContext) SetVar(key string, value any) {
	tc.vars[key] = value
	tc.patch[key] = value
}

// Patch returns the staged context variable writes.
func (tc *ToolContext) Patch() ContextVars { return tc.patch }

// TransferToAgent requests a handoff to the named agent once the current
// request finishes. Repeated calls overwrite the target.
func (tc *ToolContext) TransferToAgent(name string) {
	tc.transfer = &name
	tc.opts.Logger.Info("tool.transfer.request", "from_agent", tc.opts.AgentName, "to_agent", name, "call_id", tc.opts.CallID)
}

// TransferTarget reports the staged handoff target, if any.
func (tc *ToolContext) TransferTarget() (string, bool) {
	if tc.transfer == nil {
		return "", false
	}

	return *tc.transfer, true
}

// SaveArtifact persists artifact bytes under the run scope.
func (tc *ToolContext) SaveArtifact(id string, data []byte) error {
	if tc.opts.Artifacts == nil {
		return fmt.Errorf("artifact store not configured")
	}

	return tc.opts.Artifacts.Save(tc.ctx, tc.opts.RunID, id, data)
}

// LoadArtifact retrieves a persisted artifact by id.
func (tc *ToolContext) LoadArtifact(id string) ([]byte, error) {
	if tc.opts.Artifacts == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}

	return tc.opts.Artifacts.Get(tc.ctx, tc.opts.RunID, id)
}

// ListArtifacts returns artifact ids stored for the run.
func (tc *ToolContext) ListArtifacts() ([]string, error) {
	if tc.opts.Artifacts == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}

	return tc.opts.Artifacts.List(tc.ctx, tc.opts.RunID)
}

// StoreMemory appends content to the run's memory store and returns the
// assigned id.
func (tc *ToolContext) StoreMemory(content string, metadata map[string]any) (string, error) {
	if tc.opts.Memory == nil {
		return "", fmt.Errorf("memory store not configured")
	}

	return tc.opts.Memory.Store(tc.ctx, tc.opts.RunID, content, metadata)
}

// SearchMemory performs a recall query against the configured memory store.
func (tc *ToolContext) SearchMemory(query string, limit int) ([]MemoryHit, error) {
	if tc.opts.Memory == nil {
		return nil, fmt.Errorf("memory store not configured")
	}

	return tc.opts.Memory.Search(tc.ctx, tc.opts.RunID, query, limit)
}
