// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with chat completion models inside agentswarm.
//
// Core goals:
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Support structured output via JSON schema response formats
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agents, the runner) remain decoupled from vendor
// SDKs.
package model
