// Package agent defines the immutable agent configuration at the center of
// agentswarm. The package focuses on three concerns:
//
//  1. Agent identity and capabilities (name, model, instructions, tools)
//  2. Structured output contracts (OutputType, schema-bound final answers)
//  3. Handoff policies deciding which agent speaks next (Handoff, Outcome)
//
// Design principles:
//   - Immutability – an Agent is built once via New and never mutated, so it
//     is safe to share across concurrent runner invocations
//   - Fail-fast validation – conflicting configuration (tools plus an output
//     type, duplicate tool names, unknown forced tool) surfaces as a
//     ConfigurationError at construction, never mid-run
//   - Explicit wiring – agents reference each other through handoff policies
//     and tool results built after all agents exist, avoiding registration
//     order cycles
//
// The package intentionally keeps model specifics and the orchestration loop
// in the model and runner packages to avoid cyclic deps.
package agent
