package session

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/agentswarm/core"
)

// ErrNotFound is returned when a session id does not exist in the store.
var ErrNotFound = errors.New("session not found")

// Session is a persisted conversation: the full message history plus the
// context variables that accumulated across its runs.
type Session struct {
	ID        string           `json:"id"`
	Messages  []core.Message   `json:"messages"`
	Vars      core.ContextVars `json:"vars"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Clone returns a deep copy. Mutating the clone leaves the original
// untouched, including tool call slices inside individual messages.
func (s *Session) Clone() *Session {
	c := &Session{
		ID:        s.ID,
		Vars:      s.Vars.Clone(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}

	if s.Messages != nil {
		c.Messages = make([]core.Message, len(s.Messages))

		for i, m := range s.Messages {
			if m.ToolCalls != nil {
				m.ToolCalls = append([]core.ToolCall(nil), m.ToolCalls...)
			}

			c.Messages[i] = m
		}
	}

	return c
}

// Store persists sessions. Create is idempotent: an existing session is
// returned unchanged. The mutation methods return ErrNotFound for unknown
// ids rather than creating sessions implicitly.
type Store interface {
	Create(ctx context.Context, id string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	AppendMessages(ctx context.Context, id string, messages ...core.Message) error
	MergeVars(ctx context.Context, id string, vars core.ContextVars) error
	Delete(ctx context.Context, id string) error
}
