package core

import (
	"encoding/json"
	"fmt"
)

// ContextVars is the mutable key/value state threaded through a run. Tools
// and handoff policies read it and patch it; patches are merged additively
// with last-write-wins per key.
type ContextVars map[string]any

// Clone returns a shallow copy so callers can snapshot state without
// aliasing the live map. A nil receiver yields an empty, writable map.
func (cv ContextVars) Clone() ContextVars {
	out := make(ContextVars, len(cv))
	for k, v := range cv {
		out[k] = v
	}

	return out
}

// Merge applies patch onto cv, overwriting existing keys. The receiver is
// returned for chaining; merging a nil patch is a no-op.
func (cv ContextVars) Merge(patch ContextVars) ContextVars {
	for k, v := range patch {
		cv[k] = v
	}

	return cv
}

// String renders the variables as compact JSON for prompt interpolation.
// Falls back to fmt formatting if a value cannot be serialized.
func (cv ContextVars) String() string {
	b, err := json.Marshal(cv)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(cv))
	}

	return string(b)
}
