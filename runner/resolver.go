package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/tool"
)

// resolution collects the effects of one batch of tool calls: the tool
// messages to append, the merged context patch, and the transfer target if
// any call requested one. When several calls request a transfer, the last
// one wins.
type resolution struct {
	messages []core.Message
	patch    core.ContextVars
	next     *agent.Agent
}

// resolveToolCalls executes every tool call of an assistant turn in the
// order the backend returned them. Each surviving call contributes exactly
// one tool message; a call naming an unregistered tool contributes an error
// message instead of aborting the run. Malformed argument JSON and
// unrenderable return values abort the run.
func (r *Runner) resolveToolCalls(ctx context.Context, active *agent.Agent, calls []core.ToolCall, vars core.ContextVars, runID string, logger logging.Logger) (*resolution, error) {
	res := &resolution{patch: core.ContextVars{}}

	for _, call := range calls {
		name := call.Function.Name

		t, ok := active.Tool(name)
		if !ok {
			logger.Warn("tool.call.unknown", "tool", name, "call_id", call.ID, "agent", active.Name())
			res.messages = append(res.messages, core.NewToolMessage(call.ID, name, fmt.Sprintf("Error: tool %s not found", name)))

			continue
		}

		args, err := parseArguments(call.Function.Arguments)
		if err != nil {
			return nil, &ArgumentParseError{Tool: name, CallID: call.ID, Err: err}
		}

		callCtx, span := r.tracer.Start(ctx, "tool_call", trace.WithAttributes(
			attribute.String("tool.name", name),
			attribute.String("tool.call_id", call.ID),
			attribute.String("agent.name", active.Name()),
		))

		tc := core.NewToolContext(callCtx, vars, func(o *core.ToolContextOptions) {
			o.AgentName = active.Name()
			o.CallID = call.ID
			o.ToolName = name
			o.RunID = runID
			o.Artifacts = r.artifactStore
			o.Memory = r.memoryStore
			o.Logger = logger
		})

		value, callErr := t.Call(tc, args)
		if callErr != nil {
			span.RecordError(callErr)
			span.End()
			logger.Warn("tool.call.error_result", "tool", name, "call_id", call.ID, "error", callErr.Error())

			// A failed call contributes its error text only. Staged context
			// writes and transfers from the failed call are dropped.
			res.messages = append(res.messages, core.NewToolMessage(call.ID, name, "Error: "+errorText(callErr)))

			continue
		}

		span.End()

		outcome, err := normalizeResult(value)
		if err != nil {
			return nil, &ResultCoercionError{Tool: name, CallID: call.ID, Err: err}
		}

		res.messages = append(res.messages, core.NewToolMessage(call.ID, name, outcome.Value))

		if p := tc.Patch(); len(p) > 0 {
			res.patch.Merge(p)
		}

		if len(outcome.ContextVars) > 0 {
			res.patch.Merge(outcome.ContextVars)
		}

		next, err := r.transferTarget(tc, outcome)
		if err != nil {
			return nil, err
		}

		if next != nil {
			logger.Info("agent.transfer", "from", active.Name(), "to", next.Name(), "tool", name, "run_id", runID)
			res.next = next
		}
	}

	return res, nil
}

// transferTarget picks the transfer requested by a single call. A result
// carrying an agent reference outranks a transfer staged by name on the
// tool context. Named transfers resolve against the runner's registry.
func (r *Runner) transferTarget(tc *core.ToolContext, outcome *agent.Result) (*agent.Agent, error) {
	if outcome.NextAgent != nil {
		return outcome.NextAgent, nil
	}

	name, ok := tc.TransferTarget()
	if !ok {
		return nil, nil
	}

	next, ok := r.registry.Agent(name)
	if !ok {
		return nil, &UnknownAgentError{Name: name}
	}

	return next, nil
}

// parseArguments decodes the JSON argument payload of a tool call. An empty
// payload decodes to an empty argument map; some backends omit the payload
// entirely for zero-argument tools.
func parseArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}

	if args == nil {
		args = map[string]any{}
	}

	return args, nil
}

// normalizeResult renders a tool return value into the uniform result shape.
// Strings pass through, result values carry their side effects, and an agent
// reference becomes a transfer with a small JSON marker as the visible text.
// Everything else must be JSON-serializable.
func normalizeResult(value any) (*agent.Result, error) {
	switch v := value.(type) {
	case nil:
		return &agent.Result{}, nil
	case string:
		return &agent.Result{Value: v}, nil
	case *agent.Result:
		if v == nil {
			return &agent.Result{}, nil
		}

		return v, nil
	case agent.Result:
		return &v, nil
	case *agent.Agent:
		marker, _ := json.Marshal(map[string]string{"assistant": v.Name()})

		return &agent.Result{Value: string(marker), NextAgent: v}, nil
	case fmt.Stringer:
		return &agent.Result{Value: v.String()}, nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		return &agent.Result{Value: string(b)}, nil
	}
}

// errorText extracts the human-readable message from a tool error for the
// transcript, without the wrapping detail a ToolError adds for logs.
func errorText(err error) string {
	var te *tool.ToolError
	if errors.As(err, &te) {
		return te.Message
	}

	return err.Error()
}
