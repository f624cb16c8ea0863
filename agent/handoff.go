package agent

import "github.com/hupe1980/agentswarm/core"

// Result is the normalized outcome of a tool call or handoff function: a
// textual value for the transcript, an optional next agent, and an optional
// context variable patch. Tools may return *Result directly to combine all
// three; plain return values are coerced into one by the runner.
type Result struct {
	// Value is the text recorded in the transcript. Always present, even on
	// failure, so each tool call yields exactly one result message.
	Value string

	// NextAgent requests a handoff once the current request completes.
	NextAgent *Agent

	// ContextVars is merged into the run's context variables, per-key
	// last-write-wins.
	ContextVars core.ContextVars
}

// Outcome is the decision of a handoff policy: switch to Next, apply a
// function Result (which may itself name a next agent and patch context), or
// neither. The zero value means "no handoff".
type Outcome struct {
	// Next is the agent to hand control to. Takes precedence over
	// Result.NextAgent when both are set.
	Next *Agent

	// Result optionally contributes transcript text and a context patch in
	// addition to, or instead of, a handoff.
	Result *Result
}

// IsZero reports whether the outcome carries neither a handoff nor a result.
func (o Outcome) IsZero() bool { return o.Next == nil && o.Result == nil }

// HandoffFunc decides a handoff from the run's context variables and the
// last assistant message of the turn.
type HandoffFunc func(vars core.ContextVars, last core.Message) (Outcome, error)

// Handoff is an agent's next-agent policy, consulted once per turn when the
// model produced no tool calls. It is either a fixed target agent or a
// decision function.
type Handoff struct {
	target *Agent
	fn     HandoffFunc
}

// NewHandoffToAgent creates a policy that always hands control to target.
func NewHandoffToAgent(target *Agent) *Handoff {
	return &Handoff{target: target}
}

// NewHandoffFromFunc creates a policy backed by a decision function.
func NewHandoffFromFunc(fn HandoffFunc) *Handoff {
	return &Handoff{fn: fn}
}

// Resolve evaluates the policy. A zero Outcome with nil error means the run
// should terminate.
func (h *Handoff) Resolve(vars core.ContextVars, last core.Message) (Outcome, error) {
	if h.target != nil {
		return Outcome{Next: h.target}, nil
	}

	if h.fn != nil {
		return h.fn(vars, last)
	}

	return Outcome{}, nil
}
