package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentswarm/core"
)

// storedMemory is the internal representation persisted by InMemoryStore.
// It mirrors the core.MemoryHit shape (id, content, metadata) without a
// score field since scoring is trivial here.
type storedMemory struct {
	id       string
	content  string
	metadata map[string]any
}

// InMemoryStore is a naive process-local MemoryStore holding append-only
// notes with substring Search.
//
// Concurrency: protected by RWMutex.
// Search: linear scan with case-insensitive substring matching assigning a
// constant score of 1.0 to every hit, in insertion order. Suitable only for
// tests / demos; swap for a vector DB or semantic index for production
// retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	counter int
	notes   map[string][]storedMemory // scope -> ordered notes
}

// NewInMemoryStore creates a new in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notes: make(map[string][]storedMemory)}
}

// Store appends a new note, generating a simple incremental id.
func (m *InMemoryStore) Store(_ context.Context, scope, content string, metadata map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id := fmt.Sprintf("mem_%d", m.counter)

	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	m.notes[scope] = append(m.notes[scope], storedMemory{id: id, content: content, metadata: md})

	return id, nil
}

// Search performs a case-insensitive substring match over stored notes.
// Results are returned in insertion order up to the provided limit. Each
// result receives a constant score of 1.0. An empty query matches everything.
func (m *InMemoryStore) Search(_ context.Context, scope, query string, limit int) ([]core.MemoryHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)

	hits := make([]core.MemoryHit, 0, limit)
	for _, note := range m.notes[scope] {
		if limit > 0 && len(hits) >= limit {
			break
		}

		if needle != "" && !strings.Contains(strings.ToLower(note.content), needle) {
			continue
		}

		md := make(map[string]any, len(note.metadata))
		for k, v := range note.metadata {
			md[k] = v
		}

		hits = append(hits, core.MemoryHit{ID: note.id, Content: note.content, Score: 1.0, Metadata: md})
	}

	return hits, nil
}

// Delete removes a single note by id. Deleting a missing note is not an
// error.
func (m *InMemoryStore) Delete(_ context.Context, scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := m.notes[scope]
	for i, note := range notes {
		if note.id == id {
			m.notes[scope] = append(notes[:i], notes[i+1:]...)
			break
		}
	}

	return nil
}
