// Package core provides the foundational domain types shared across
// agentswarm. It defines the core abstractions for:
//
//   - Messages (chat transcript entries in OpenAI-compatible wire shape)
//   - Tool calls (model-requested function invocations and their arguments)
//   - ContextVars (mutable key/value state threaded through a run)
//   - ToolContext (scoped execution surface handed to tool implementations)
//   - Pluggable stores for artifacts and memory recall
//
// The package intentionally keeps implementation concerns (model backends,
// runner orchestration, concrete tools) out of scope, exposing small types to
// enable custom backends and extensions.
package core
