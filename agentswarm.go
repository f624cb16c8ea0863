// Package agentswarm provides a high-level façade over the runner and the
// service abstractions (sessions, artifacts, memory & logging) for building
// multi-agent systems on chat model backends. Most applications interact
// with this package by:
//  1. Creating a Swarm via New() with a model backend (optionally
//     overriding the default in-memory services)
//  2. Registering one or more agents
//  3. Running them via Run, RunMessages, or RunSession
//
// The façade delegates orchestration to runner.Runner while keeping setup
// concise. Its agent registry doubles as the resolver for transfers staged
// by name, so `transfer_to_agent`-style tools work against every registered
// agent. All defaults are safe for local development and testing;
// production deployments typically supply durable store implementations and
// a structured logger.
package agentswarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/artifact"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/memory"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/runner"
	"github.com/hupe1980/agentswarm/session"
	"github.com/hupe1980/agentswarm/tokenizer"
)

// Options configures the Swarm instance.
type Options struct {
	// MaxTurns limits model calls per run.
	MaxTurns int

	// TokenLimit caps the completion size of each model call. Zero keeps
	// the backend default.
	TokenLimit int

	// PromptTokenLimit ends runs cleanly before over-long prompts. Zero
	// disables the check.
	PromptTokenLimit int

	// Counter estimates prompt sizes for PromptTokenLimit.
	Counter tokenizer.Counter

	// Stores (default to in-memory implementations if not provided).
	SessionStore  session.Store
	ArtifactStore core.ArtifactStore
	MemoryStore   core.MemoryStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Swarm is the high-level façade aggregating the runner, the agent
// registry, and the configured services.
type Swarm struct {
	runner       *runner.Runner
	sessionStore session.Store

	mu     sync.RWMutex
	agents map[string]*agent.Agent
	order  []string
}

// New creates a Swarm bound to a model backend with optional overrides. Any
// unset service is initialized with an in-memory implementation.
func New(backend model.Model, optFns ...func(o *Options)) *Swarm {
	opts := Options{
		MaxTurns:      runner.DefaultMaxTurns,
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
		MemoryStore:   memory.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Swarm{
		sessionStore: opts.SessionStore,
		agents:       make(map[string]*agent.Agent),
	}

	s.runner = runner.New(backend, func(o *runner.Options) {
		o.MaxTurns = opts.MaxTurns
		o.TokenLimit = opts.TokenLimit
		o.PromptTokenLimit = opts.PromptTokenLimit
		o.Counter = opts.Counter
		o.Registry = s
		o.ArtifactStore = opts.ArtifactStore
		o.MemoryStore = opts.MemoryStore
		o.Logger = opts.Logger
	})

	return s
}

// RegisterAgent adds an agent to the registry, making it a valid target for
// by-name transfers and remote invocation. Duplicate names are rejected.
func (s *Swarm) RegisterAgent(a *agent.Agent) error {
	if a == nil {
		return fmt.Errorf("agentswarm: agent must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[a.Name()]; exists {
		return fmt.Errorf("agentswarm: agent %q already registered", a.Name())
	}

	s.agents[a.Name()] = a
	s.order = append(s.order, a.Name())

	return nil
}

// Agent returns the registered agent with the given name.
func (s *Swarm) Agent(name string) (*agent.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[name]

	return a, ok
}

// Agents returns all registered agents in registration order.
func (s *Swarm) Agents() []*agent.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*agent.Agent, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.agents[name])
	}

	return out
}

// Run executes the named agent against a single user query.
func (s *Swarm) Run(ctx context.Context, agentName, query string, optFns ...func(o *runner.RunOptions)) (*runner.Result, error) {
	return s.RunMessages(ctx, agentName, []core.Message{core.NewUserMessage(query)}, optFns...)
}

// RunMessages executes the named agent against a seeded message history.
func (s *Swarm) RunMessages(ctx context.Context, agentName string, messages []core.Message, optFns ...func(o *runner.RunOptions)) (*runner.Result, error) {
	a, ok := s.Agent(agentName)
	if !ok {
		return nil, fmt.Errorf("agentswarm: agent %q not registered", agentName)
	}

	return s.runner.Run(ctx, a, messages, optFns...)
}

// RunSession executes the named agent inside a persistent session: the
// stored history and variables seed the run, and the new user message, the
// generated messages, and the merged variables are persisted afterwards.
// When persistence fails the completed result is returned alongside the
// error.
func (s *Swarm) RunSession(ctx context.Context, sessionID, agentName, query string, optFns ...func(o *runner.RunOptions)) (*runner.Result, error) {
	a, ok := s.Agent(agentName)
	if !ok {
		return nil, fmt.Errorf("agentswarm: agent %q not registered", agentName)
	}

	sess, err := s.sessionStore.Create(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("agentswarm: load session %s: %w", sessionID, err)
	}

	runOpts := runner.RunOptions{}
	for _, fn := range optFns {
		fn(&runOpts)
	}

	vars := sess.Vars.Clone()
	vars.Merge(runOpts.Vars)

	userMsg := core.NewUserMessage(query)
	seed := append(sess.Messages, userMsg)

	result, err := s.runner.Run(ctx, a, seed, func(o *runner.RunOptions) {
		*o = runOpts
		o.Vars = vars
	})
	if err != nil {
		return nil, err
	}

	appended := append([]core.Message{userMsg}, result.Messages...)
	if err := s.sessionStore.AppendMessages(ctx, sessionID, appended...); err != nil {
		return result, fmt.Errorf("agentswarm: persist session %s: %w", sessionID, err)
	}

	if len(result.Vars) > 0 {
		if err := s.sessionStore.MergeVars(ctx, sessionID, result.Vars); err != nil {
			return result, fmt.Errorf("agentswarm: persist session %s vars: %w", sessionID, err)
		}
	}

	return result, nil
}
