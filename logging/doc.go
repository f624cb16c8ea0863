// Package logging provides a minimal logging interface and adapters for agentswarm.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runner and tools use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZerologAdapter for zerolog-based setups
//   - SwarmLogger with contextual cloning and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(logging.DefaultLoggerConfig())
//	r := runner.New(backend, func(o *runner.Options) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
