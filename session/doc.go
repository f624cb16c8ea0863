// Package session persists conversations across runs: the message history
// and the accumulated context variables of a named session. The Store
// interface is deliberately small so backends stay interchangeable; the
// in-memory implementation lives here, database-backed implementations in
// sub-packages (postgres, sqlite). Only the wiring layer decides which one
// to instantiate.
package session
