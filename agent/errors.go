package agent

import "fmt"

// ConfigurationError reports an invalid agent definition. It is fatal and
// surfaces at construction time so misconfiguration never reaches a run.
type ConfigurationError struct {
	Agent   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("agent %q: %s", e.Agent, e.Message)
}

func newConfigurationError(agent, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Agent: agent, Message: fmt.Sprintf(format, args...)}
}
