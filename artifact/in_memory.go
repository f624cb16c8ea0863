package artifact

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a trivial in-process ArtifactStore implementation useful
// for tests, examples and single-process prototypes. It keeps all artifacts in
// a nested map guarded by an RWMutex. Data is copied on save / retrieval to
// avoid accidental external mutation of internal buffers.
//
// Layout: scope -> artifact id -> raw bytes
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For durability across process restarts,
// use FileStore or a database-backed implementation.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte // scope -> id -> data
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given scope and id.
// The input slice is copied before storage.
func (a *InMemoryStore) Save(_ context.Context, scope, id string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.artifacts[scope]; !exists {
		a.artifacts[scope] = make(map[string][]byte)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[scope][id] = cp

	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(_ context.Context, scope, id string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	m, ok := a.artifacts[scope]
	if !ok {
		return nil, ErrNotFound
	}

	data, ok := m[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

// List returns the artifact ids stored for the scope, sorted. The slice is a
// snapshot and safe for caller mutation.
func (a *InMemoryStore) List(_ context.Context, scope string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	m, ok := a.artifacts[scope]
	if !ok {
		return []string{}, nil
	}

	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids, nil
}

// Delete removes the artifact if present. Deleting a missing artifact is not
// an error.
func (a *InMemoryStore) Delete(_ context.Context, scope, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if m, ok := a.artifacts[scope]; ok {
		delete(m, id)
	}

	return nil
}
