package agent

import (
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from context variables, environment, etc.
type Provider interface {
	Instruction(vars core.ContextVars) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(vars core.ContextVars) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(vars core.ContextVars) (string, error) { return f(vars) }

// Instruction represents either a static instruction string or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way. Dynamic
// instructions are re-resolved every turn their agent is active, so they can
// reflect context mutated by earlier tool calls.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(vars core.ContextVars) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// NewInstructionFromTemplate creates an Instruction whose text is rendered
// against the context variables on every resolution. Missing keys render as
// zero values rather than failing the turn.
func NewInstructionFromTemplate(text string) Instruction {
	return Instruction{provider: Func(func(vars core.ContextVars) (string, error) {
		return util.RenderTemplate(text, vars)
	})}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(vars core.ContextVars) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(vars)
	}

	return i.text, nil
}
