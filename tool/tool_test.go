package tool

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/hupe1980/agentswarm/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Test Fixtures --------------------

type memArtifactStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func newMemArtifactStore() *memArtifactStore {
	return &memArtifactStore{data: map[string]map[string][]byte{}}
}

func (a *memArtifactStore) Save(_ context.Context, scope, id string, b []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.data[scope]; !ok {
		a.data[scope] = map[string][]byte{}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	a.data[scope][id] = cp
	return nil
}

func (a *memArtifactStore) Get(_ context.Context, scope, id string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if m, ok := a.data[scope]; ok {
		if d, ok := m[id]; ok {
			cp := make([]byte, len(d))
			copy(cp, d)
			return cp, nil
		}
	}
	return nil, errors.New("not found")
}

func (a *memArtifactStore) List(_ context.Context, scope string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m := a.data[scope]
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res, nil
}

func (a *memArtifactStore) Delete(_ context.Context, scope, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := a.data[scope]; ok {
		delete(m, id)
	}
	return nil
}

type memMemoryStore struct {
	mu   sync.RWMutex
	hits map[string][]core.MemoryHit
}

func newMemMemoryStore() *memMemoryStore {
	return &memMemoryStore{hits: map[string][]core.MemoryHit{}}
}

func (m *memMemoryStore) Store(_ context.Context, scope, content string, metadata map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hit := core.MemoryHit{ID: content, Content: content, Score: 1.0, Metadata: metadata}
	m.hits[scope] = append(m.hits[scope], hit)
	return hit.ID, nil
}

func (m *memMemoryStore) Search(_ context.Context, scope, _ string, limit int) ([]core.MemoryHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.hits[scope]
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (m *memMemoryStore) Delete(_ context.Context, _, _ string) error { return nil }

func newTestToolContext(vars core.ContextVars) *core.ToolContext {
	return core.NewToolContext(context.Background(), vars, func(o *core.ToolContextOptions) {
		o.AgentName = "tester"
		o.CallID = "call_1"
		o.RunID = "run-1"
		o.Artifacts = newMemArtifactStore()
		o.Memory = newMemMemoryStore()
	})
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionToolSuccess(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(newTestToolContext(nil), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []string{"a"},
	}

	tTool := NewFunctionTool("test", "Test", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return 0, nil
	})

	_, err := tTool.Call(newTestToolContext(nil), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	// Wrong argument type is rejected too.
	_, err = tTool.Call(newTestToolContext(nil), map[string]any{"a": "not-a-number"})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionToolExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}

	execTool := NewFunctionTool("fail", "Fails", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(newTestToolContext(nil), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionToolCustomToolErrorForwarded(t *testing.T) {
	custom := NewToolError("quota", "rate limited", "RATE_LIMITED")

	quotaTool := NewFunctionTool("quota", "Quota", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, custom
	})

	_, err := quotaTool.Call(newTestToolContext(nil), map[string]any{})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code)
}

type weatherArgs struct {
	City string `json:"city" description:"City name"`
}

func TestFunctionToolFromStruct(t *testing.T) {
	weatherTool := NewFunctionToolFromStruct("get_weather", "Get weather", weatherArgs{}, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return "sunny in " + args["city"].(string), nil
	})

	props, ok := weatherTool.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")

	result, err := weatherTool.Call(newTestToolContext(nil), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", result)

	// Missing required arg fails schema validation.
	_, err = weatherTool.Call(newTestToolContext(nil), map[string]any{})
	require.Error(t, err)
}

// -------------------- Transfer Tools --------------------

func TestTransferToAgentTool(t *testing.T) {
	transfer := NewTransferToAgentTool()
	tc := newTestToolContext(nil)

	result, err := transfer.Call(tc, map[string]any{"agent": "sales"})
	require.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, true, m["transferred"])

	target, ok := tc.TransferTarget()
	require.True(t, ok)
	assert.Equal(t, "sales", target)

	_, err = transfer.Call(newTestToolContext(nil), map[string]any{})
	require.Error(t, err)
}

func TestHandoffTool(t *testing.T) {
	handoff := NewHandoffTool("support", "")

	assert.Equal(t, "transfer_to_support", handoff.Name())
	assert.Contains(t, handoff.Description(), "support")

	tc := newTestToolContext(nil)
	_, err := handoff.Call(tc, nil)
	require.NoError(t, err)

	target, ok := tc.TransferTarget()
	require.True(t, ok)
	assert.Equal(t, "support", target)
}

// -------------------- Context Variable Tools --------------------

func TestSetAndGetContextValueTools(t *testing.T) {
	tc := newTestToolContext(core.ContextVars{"user": "alice"})

	setTool := NewSetContextValueTool()
	_, err := setTool.Call(tc, map[string]any{"key": "tier", "value": "gold"})
	require.NoError(t, err)
	assert.Equal(t, core.ContextVars{"tier": "gold"}, tc.Patch())

	getTool := NewGetContextValueTool()
	result, err := getTool.Call(tc, map[string]any{"key": "tier"})
	require.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, true, m["exists"])
	assert.Equal(t, "gold", m["value"])

	result, err = getTool.Call(tc, map[string]any{"key": "missing"})
	require.NoError(t, err)
	assert.Equal(t, false, result.(map[string]any)["exists"])
}

// -------------------- Memory Tools --------------------

func TestMemoryTools(t *testing.T) {
	tc := newTestToolContext(nil)

	saveTool := NewSaveMemoryTool()
	result, err := saveTool.Call(tc, map[string]any{"content": "user prefers metric units", "topic": "prefs"})
	require.NoError(t, err)
	assert.Equal(t, true, result.(map[string]any)["stored"])

	searchTool := NewSearchMemoryTool()
	result, err = searchTool.Call(tc, map[string]any{"query": "units"})
	require.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, 1, m["count"])

	_, err = saveTool.Call(tc, map[string]any{})
	require.Error(t, err)
}

// -------------------- Artifact Tools --------------------

func TestArtifactTools(t *testing.T) {
	tc := newTestToolContext(nil)

	saveTool := NewSaveArtifactTool()
	_, err := saveTool.Call(tc, map[string]any{"id": "report.md", "content": "# Report"})
	require.NoError(t, err)

	loadTool := NewLoadArtifactTool()
	result, err := loadTool.Call(tc, map[string]any{"id": "report.md"})
	require.NoError(t, err)
	assert.Equal(t, "# Report", result.(map[string]any)["content"])

	listTool := NewListArtifactsTool()
	result, err = listTool.Call(tc, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.md"}, result.(map[string]any)["artifacts"])

	_, err = loadTool.Call(tc, map[string]any{"id": "missing"})
	require.Error(t, err)
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")

	plain := &ToolError{Tool: "demo", Message: "failed"}
	assert.NotContains(t, plain.Error(), "[")
}
