package session

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentswarm/core"
)

// InMemoryStore is a volatile Store implementation holding sessions in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Each returned session is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// Create returns the existing session for id, or stores and returns a fresh
// one.
func (s *InMemoryStore) Create(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess.Clone(), nil
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        id,
		Vars:      core.ContextVars{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[id] = sess

	return sess.Clone(), nil
}

// Get returns a clone of the stored session, or ErrNotFound.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return sess.Clone(), nil
}

// AppendMessages adds messages to the session history.
func (s *InMemoryStore) AppendMessages(ctx context.Context, id string, messages ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}

	sess.Messages = append(sess.Messages, messages...)
	sess.UpdatedAt = time.Now().UTC()

	return nil
}

// MergeVars merges a context patch into the session variables, overwriting
// existing keys.
func (s *InMemoryStore) MergeVars(ctx context.Context, id string, vars core.ContextVars) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}

	if sess.Vars == nil {
		sess.Vars = core.ContextVars{}
	}

	sess.Vars.Merge(vars)
	sess.UpdatedAt = time.Now().UTC()

	return nil
}

// Delete removes the session.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}

	delete(s.sessions, id)

	return nil
}
