package runner

import "fmt"

// ArgumentParseError indicates that the backend returned tool call arguments
// that are not valid JSON. The run aborts because the malformed call cannot
// be executed and silently skipping it would desynchronize the transcript.
type ArgumentParseError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("parse arguments for tool %q (call %s): %v", e.Tool, e.CallID, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// ResultCoercionError indicates that a tool returned a value the runner
// could not render as a transcript string.
type ResultCoercionError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ResultCoercionError) Error() string {
	return fmt.Sprintf("coerce result of tool %q (call %s): %v", e.Tool, e.CallID, e.Err)
}

func (e *ResultCoercionError) Unwrap() error { return e.Err }

// UnknownAgentError indicates that a tool requested a transfer to an agent
// name that was never registered with the Runner.
type UnknownAgentError struct {
	Name string
}

func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("transfer to unknown agent %q", e.Name)
}
