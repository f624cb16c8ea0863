// Package runner drives the agent loop: it sends the conversation to the
// model backend, resolves tool calls, applies context updates and agent
// transfers, and repeats until the active agent produces a final answer or
// the turn budget is exhausted.
//
// A Runner is bound to a model backend and is safe for concurrent use; each
// Run call keeps its own conversation state. The loop is synchronous and
// sequential: tool calls within a turn execute one after another in the
// order the backend returned them, and the caller receives the full set of
// messages generated during the run.
//
// Typical usage:
//
//	triage, _ := agent.New("triage", "gpt-4o", func(o *agent.Options) {
//		o.Tools = []tool.Tool{transferToSales}
//	})
//
//	r := runner.New(backend, func(o *runner.Options) {
//		o.MaxTurns = 5
//	})
//
//	result, err := r.Run(ctx, triage, []core.Message{core.NewUserMessage("hi")})
package runner
