package agentswarm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/testutil"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/runner"
	"github.com/hupe1980/agentswarm/session"
	"github.com/hupe1980/agentswarm/tool"
)

func newTestAgent(t *testing.T, name string, optFns ...func(o *agent.Options)) *agent.Agent {
	t.Helper()

	a, err := agent.New(name, "test-model", optFns...)
	require.NoError(t, err)

	return a
}

func TestRegisterAgent(t *testing.T) {
	s := New(model.NewMockModel("test-model", "test"))

	a := newTestAgent(t, "assistant")
	require.NoError(t, s.RegisterAgent(a))

	got, ok := s.Agent("assistant")
	require.True(t, ok)
	assert.Equal(t, a, got)

	assert.Error(t, s.RegisterAgent(a), "duplicate names are rejected")
	assert.Error(t, s.RegisterAgent(nil))

	_, ok = s.Agent("ghost")
	assert.False(t, ok)
}

func TestAgentsPreservesRegistrationOrder(t *testing.T) {
	s := New(model.NewMockModel("test-model", "test"))

	names := []string{"triage", "sales", "support"}
	for _, name := range names {
		require.NoError(t, s.RegisterAgent(newTestAgent(t, name)))
	}

	agents := s.Agents()
	require.Len(t, agents, 3)

	for i, a := range agents {
		assert.Equal(t, names[i], a.Name())
	}
}

func TestRunByName(t *testing.T) {
	backend := model.NewMockModel("test-model", "test")
	backend.EnqueueText("hello back")

	s := New(backend)
	require.NoError(t, s.RegisterAgent(newTestAgent(t, "assistant")))

	result, err := s.Run(context.Background(), "assistant", "hello")
	require.NoError(t, err)

	require.Len(t, result.Messages, 1)
	assert.Equal(t, "hello back", result.Messages[0].Content)

	_, err = s.Run(context.Background(), "ghost", "hello")
	require.Error(t, err)
}

func TestRegistryResolvesStagedTransfers(t *testing.T) {
	backend := model.NewMockModel("test-model", "test")
	backend.EnqueueToolCalls(testutil.Call("call_1", "transfer_to_agent", `{"agent":"billing"}`))
	backend.EnqueueText("billing can help with that")

	s := New(backend)

	triage := newTestAgent(t, "triage", func(o *agent.Options) {
		o.Tools = []tool.Tool{tool.NewTransferToAgentTool()}
	})
	billing := newTestAgent(t, "billing")

	require.NoError(t, s.RegisterAgent(triage))
	require.NoError(t, s.RegisterAgent(billing))

	result, err := s.Run(context.Background(), "triage", "my invoice is wrong")
	require.NoError(t, err)

	assert.Equal(t, billing, result.Agent)
	assert.Equal(t, "billing", result.Messages[2].Sender)
}

func TestRunSessionPersistsHistoryAndVars(t *testing.T) {
	backend := model.NewMockModel("test-model", "test")
	backend.EnqueueToolCalls(testutil.Call("call_1", "remember", `{}`))
	backend.EnqueueText("noted")
	backend.EnqueueText("I remember you, ada")

	store := session.NewInMemoryStore()
	s := New(backend, func(o *Options) {
		o.SessionStore = store
	})

	remember := tool.NewFunctionTool("remember", "stores the user", nil, func(tc *core.ToolContext, args map[string]any) (any, error) {
		tc.SetVar("user", "ada")

		return "remembered", nil
	})

	require.NoError(t, s.RegisterAgent(newTestAgent(t, "assistant", func(o *agent.Options) {
		o.Tools = []tool.Tool{remember}
	})))

	ctx := context.Background()

	first, err := s.RunSession(ctx, "sess-1", "assistant", "hi, I am ada")
	require.NoError(t, err)
	require.Len(t, first.Messages, 3)

	sess, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)

	// user message + assistant tool call + tool result + final answer
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, core.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "ada", sess.Vars["user"])

	second, err := s.RunSession(ctx, "sess-1", "assistant", "who am I?")
	require.NoError(t, err)
	require.Len(t, second.Messages, 1)

	// The second run was seeded with the stored history plus the new query.
	reqs := backend.Requests()
	lastReq := reqs[len(reqs)-1]
	assert.Len(t, lastReq.Messages, 6) // system + 4 stored + new user

	sess, err = store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 6)
}

func TestRunSessionSeedsStoredVars(t *testing.T) {
	backend := model.NewMockModel("test-model", "test")
	backend.EnqueueText("done")

	store := session.NewInMemoryStore()
	s := New(backend, func(o *Options) {
		o.SessionStore = store
	})

	ctx := context.Background()

	_, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)
	require.NoError(t, store.MergeVars(ctx, "sess-1", core.ContextVars{"tier": "pro"}))

	require.NoError(t, s.RegisterAgent(newTestAgent(t, "assistant", func(o *agent.Options) {
		o.Instruction = agent.NewInstructionFromFunc(func(vars core.ContextVars) (string, error) {
			tier, _ := vars["tier"].(string)

			return "Tier: " + tier, nil
		})
	})))

	result, err := s.RunSession(ctx, "sess-1", "assistant", "hello", func(o *runner.RunOptions) {
		o.Vars = core.ContextVars{"locale": "de"}
	})
	require.NoError(t, err)

	assert.Equal(t, "pro", result.Vars["tier"])
	assert.Equal(t, "de", result.Vars["locale"])
	assert.Equal(t, "Tier: pro", backend.Requests()[0].Messages[0].Content)
}
