package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/session"
	"github.com/hupe1980/agentswarm/session/postgres"
)

var _ session.Store = (*postgres.Store)(nil)

// setupStore connects to the database named by DATABASE_URL, runs the
// embedded migrations, and returns a ready store. Skipped when no database
// is available.
func setupStore(t *testing.T) *postgres.Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("requires DATABASE_URL")
	}

	ctx := context.Background()

	require.NoError(t, postgres.Migrate(ctx, dsn))

	store, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()

	t.Cleanup(func() { _ = store.Delete(ctx, id) })

	created, err := store.Create(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Empty(t, created.Messages)

	// Create is idempotent.
	again, err := store.Create(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, again.CreatedAt)

	require.NoError(t, store.AppendMessages(ctx, id,
		core.NewUserMessage("hello"),
		core.NewAssistantMessage("assistant", "hi", core.ToolCall{
			ID:       "call_1",
			Type:     "function",
			Function: core.FunctionCall{Name: "lookup", Arguments: `{"q":"x"}`},
		}),
	))

	require.NoError(t, store.MergeVars(ctx, id, core.ContextVars{"user": "ada", "tier": "free"}))
	require.NoError(t, store.MergeVars(ctx, id, core.ContextVars{"tier": "pro"}))

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)

	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "hello", sess.Messages[0].Content)
	require.Len(t, sess.Messages[1].ToolCalls, 1)
	assert.Equal(t, "lookup", sess.Messages[1].ToolCalls[0].Function.Name)
	assert.Equal(t, "ada", sess.Vars["user"])
	assert.Equal(t, "pro", sess.Vars["tier"])
}

func TestStoreNotFound(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	id := "missing-" + uuid.NewString()

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, session.ErrNotFound)

	assert.ErrorIs(t, store.AppendMessages(ctx, id, core.NewUserMessage("x")), session.ErrNotFound)
	assert.ErrorIs(t, store.MergeVars(ctx, id, core.ContextVars{"k": 1}), session.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), session.ErrNotFound)
}
