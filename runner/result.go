package runner

import (
	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

// Result is the outcome of a completed run.
type Result struct {
	// Messages contains every message generated during the run, in order:
	// assistant turns and tool results. The seeded input history is not
	// included.
	Messages []core.Message

	// Agent is the agent that was active when the run ended. After one or
	// more transfers this differs from the agent Run was called with.
	Agent *agent.Agent

	// Vars holds the context variables after all tool patches were applied.
	Vars core.ContextVars

	// Structured holds the parsed output of a schema-bound agent, or nil if
	// no such agent completed a turn. The concrete type is a pointer to the
	// prototype the agent's OutputType was built from.
	Structured any

	// Usage accumulates token usage across every model call of the run.
	Usage model.Usage

	// Turns is the number of model calls the run consumed.
	Turns int
}

// Last returns the final message generated during the run, typically the
// assistant answer. ok is false when the run produced no messages, which
// happens when a budget is exhausted before the first model call completes.
func (r *Result) Last() (core.Message, bool) {
	if len(r.Messages) == 0 {
		return core.Message{}, false
	}

	return r.Messages[len(r.Messages)-1], true
}
