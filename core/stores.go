package core

import "context"

// ArtifactStore persists opaque binary artifacts produced during runs. The
// scope partitions artifacts between independent runs or sessions; callers
// pass whatever partition key fits their deployment (run ID, session ID).
type ArtifactStore interface {
	// Save stores artifact data under the given scope and id, overwriting
	// any previous version.
	Save(ctx context.Context, scope, id string, data []byte) error

	// Get retrieves a stored artifact. Implementations return an error when
	// the artifact does not exist.
	Get(ctx context.Context, scope, id string) ([]byte, error)

	// List returns the artifact ids stored for the scope, sorted.
	List(ctx context.Context, scope string) ([]string, error)

	// Delete removes an artifact. Deleting a missing artifact is not an error.
	Delete(ctx context.Context, scope, id string) error
}

// MemoryHit is one recall result returned by a MemoryStore search.
type MemoryHit struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MemoryStore captures free-form notes for later recall. Like ArtifactStore,
// the scope partitions entries between runs or sessions.
type MemoryStore interface {
	// Store appends content with optional metadata and returns the assigned
	// memory id.
	Store(ctx context.Context, scope, content string, metadata map[string]any) (string, error)

	// Search returns up to limit hits relevant to the query, best first.
	Search(ctx context.Context, scope, query string, limit int) ([]MemoryHit, error)

	// Delete removes a single memory entry by id.
	Delete(ctx context.Context, scope, id string) error
}
