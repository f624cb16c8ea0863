package runner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/artifact"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/memory"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/tokenizer"
)

const tracerName = "agentswarm"

// DefaultMaxTurns bounds a run when no explicit limit is configured. Every
// model call consumes one turn.
const DefaultMaxTurns = 10

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// MaxTurns limits the number of model calls per run. Zero disables the
	// loop entirely: Run returns an empty result without calling the model.
	MaxTurns int

	// TokenLimit caps the completion size of every model call. Zero leaves
	// the backend default in place.
	TokenLimit int

	// PromptTokenLimit ends the run cleanly before a model call whose
	// prompt would exceed this many tokens. Zero disables the check.
	PromptTokenLimit int

	// Counter estimates prompt sizes for PromptTokenLimit. Defaults to the
	// heuristic counter; wire a tokenizer.TiktokenCounter for exact counts.
	Counter tokenizer.Counter

	// Agents registers agents reachable by name, the target space for
	// transfers staged through the tool context. Agents returned directly
	// from tools do not need to be registered.
	Agents []*agent.Agent

	// Registry resolves by-name transfers dynamically. When set it takes
	// precedence over Agents; the facade wires its own registry here so
	// agents registered after the runner exists stay reachable.
	Registry Registry

	// Artifact management services.
	ArtifactStore core.ArtifactStore

	// Memory management services.
	MemoryStore core.MemoryStore

	// Logging services.
	Logger logging.Logger

	// Tracer records run and tool call spans. Defaults to the global
	// tracer provider.
	Tracer trace.Tracer
}

// RunOptions holds per-run overrides passed to Run().
type RunOptions struct {
	// Vars seeds the context variables visible to instruction providers
	// and tools.
	Vars core.ContextVars

	// MaxTurns overrides the runner's turn limit when set above zero.
	MaxTurns int
}

// Runner executes agents against a model backend. It owns the conversation
// loop: building requests, resolving tool calls, applying transfers, and
// enforcing turn budgets. A Runner is safe for concurrent use; each Run
// keeps its own state.
type Runner struct {
	backend model.Model

	maxTurns         int
	tokenLimit       int
	promptTokenLimit int
	counter          tokenizer.Counter

	registry Registry

	artifactStore core.ArtifactStore
	memoryStore   core.MemoryStore
	logger        logging.Logger
	tracer        trace.Tracer
}

// Registry resolves agent names for transfers staged by name. The zero
// registry knows no agents.
type Registry interface {
	Agent(name string) (*agent.Agent, bool)
}

type staticRegistry map[string]*agent.Agent

func (r staticRegistry) Agent(name string) (*agent.Agent, bool) {
	a, ok := r[name]

	return a, ok
}

// New constructs a Runner bound to a model backend, with optional overrides.
func New(backend model.Model, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxTurns:      DefaultMaxTurns,
		ArtifactStore: artifact.NewInMemoryStore(),
		MemoryStore:   memory.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxTurns < 0 {
		opts.MaxTurns = 0
	}

	if opts.Counter == nil {
		opts.Counter = tokenizer.NewHeuristicCounter()
	}

	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}

	registry := opts.Registry
	if registry == nil {
		index := make(staticRegistry, len(opts.Agents))
		for _, a := range opts.Agents {
			if a != nil {
				index[a.Name()] = a
			}
		}

		registry = index
	}

	return &Runner{
		backend:          backend,
		maxTurns:         opts.MaxTurns,
		tokenLimit:       opts.TokenLimit,
		promptTokenLimit: opts.PromptTokenLimit,
		counter:          opts.Counter,
		registry:         registry,
		artifactStore:    opts.ArtifactStore,
		memoryStore:      opts.MemoryStore,
		logger:           opts.Logger,
		tracer:           opts.Tracer,
	}
}

// Run executes the agent loop starting from a and the seeded messages. It
// returns once the active agent produces a final answer, a budget runs out,
// or a fatal error occurs. The returned result contains only the messages
// generated during the run, not the seeded history.
func (r *Runner) Run(ctx context.Context, a *agent.Agent, messages []core.Message, optFns ...func(o *RunOptions)) (*Result, error) {
	if a == nil {
		return nil, fmt.Errorf("runner: agent must not be nil")
	}

	runOpts := RunOptions{}
	for _, fn := range optFns {
		fn(&runOpts)
	}

	maxTurns := r.maxTurns
	if runOpts.MaxTurns > 0 {
		maxTurns = runOpts.MaxTurns
	}

	runID := core.NewID()

	logger := r.logger
	if sl, ok := logger.(*logging.SwarmLogger); ok {
		logger = sl.WithRun(runID)
	}

	ctx, span := r.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("agent.name", a.Name()),
	))
	defer span.End()

	logger.Info("run.start", "run_id", runID, "agent", a.Name(), "messages", len(messages))

	vars := runOpts.Vars.Clone()
	history := append([]core.Message(nil), messages...)
	initLen := len(history)

	active := a

	var (
		structured any
		usage      model.Usage
		turns      int
	)

	for turns < maxTurns {
		req, err := r.buildRequest(active, history, vars)
		if err != nil {
			span.RecordError(err)

			return nil, err
		}

		if r.promptTokenLimit > 0 {
			if n := r.counter.CountMessages(req.Messages); n > r.promptTokenLimit {
				logger.Warn("run.prompt_budget_exceeded", "run_id", runID, "tokens", n, "limit", r.promptTokenLimit)

				break
			}
		}

		logger.Debug("run.turn", "run_id", runID, "turn", turns+1, "agent", active.Name())

		resp, err := r.backend.Generate(ctx, req)
		if err != nil {
			span.RecordError(err)
			logger.Error("run.model_error", "run_id", runID, "turn", turns+1, "error", err.Error())

			// Backend failures are not retried here. Retry policy belongs
			// to the caller or a wrapping model implementation.
			return nil, err
		}

		turns++
		usage.Add(resp.Usage)

		msg := resp.Message
		msg.Role = core.RoleAssistant
		msg.Sender = active.Name()

		if ot := active.OutputType(); ot != nil {
			parsed, err := ot.Parse(msg.Content)
			if err != nil {
				span.RecordError(err)

				return nil, fmt.Errorf("structured output of agent %q: %w", active.Name(), err)
			}

			history = append(history, msg)
			structured = parsed

			next, err := r.consultHandoff(active, vars, msg)
			if err != nil {
				span.RecordError(err)

				return nil, err
			}

			if next == nil {
				break
			}

			active = next

			continue
		}

		history = append(history, msg)

		if !msg.HasToolCalls() {
			next, err := r.consultHandoff(active, vars, msg)
			if err != nil {
				span.RecordError(err)

				return nil, err
			}

			if next == nil {
				break
			}

			logger.Info("agent.handoff", "from", active.Name(), "to", next.Name(), "run_id", runID)
			active = next

			continue
		}

		res, err := r.resolveToolCalls(ctx, active, msg.ToolCalls, vars, runID, logger)
		if err != nil {
			span.RecordError(err)

			return nil, err
		}

		history = append(history, res.messages...)
		vars.Merge(res.patch)

		if res.next != nil {
			active = res.next
		}
	}

	logger.Info("run.complete", "run_id", runID, "turns", turns, "agent", active.Name())

	return &Result{
		Messages:   history[initLen:],
		Agent:      active,
		Vars:       vars,
		Structured: structured,
		Usage:      usage,
		Turns:      turns,
	}, nil
}

// consultHandoff evaluates the active agent's handoff policy against its
// final assistant message. It returns the next agent, or nil when the run
// should terminate. A policy result carrying context variables merges them
// before the next agent takes over.
func (r *Runner) consultHandoff(active *agent.Agent, vars core.ContextVars, last core.Message) (*agent.Agent, error) {
	h := active.Handoff()
	if h == nil {
		return nil, nil
	}

	outcome, err := h.Resolve(vars, last)
	if err != nil {
		return nil, fmt.Errorf("handoff of agent %q: %w", active.Name(), err)
	}

	if outcome.IsZero() {
		return nil, nil
	}

	var next *agent.Agent

	if res := outcome.Result; res != nil {
		if len(res.ContextVars) > 0 {
			vars.Merge(res.ContextVars)
		}

		next = res.NextAgent
	}

	if outcome.Next != nil {
		next = outcome.Next
	}

	return next, nil
}
