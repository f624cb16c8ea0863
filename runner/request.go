package runner

import (
	"fmt"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

// buildRequest assembles the model request for one turn of the active agent.
// Instructions are re-resolved on every turn so dynamic providers observe
// the current context variables. The system message always comes first,
// followed by the accumulated history unchanged.
func (r *Runner) buildRequest(a *agent.Agent, history []core.Message, vars core.ContextVars) (model.Request, error) {
	instructions, err := a.ResolveInstructions(vars)
	if err != nil {
		return model.Request{}, fmt.Errorf("resolve instructions for agent %q: %w", a.Name(), err)
	}

	messages := make([]core.Message, 0, len(history)+1)
	messages = append(messages, core.NewSystemMessage(instructions))
	messages = append(messages, history...)

	req := model.Request{
		Model:       a.Model(),
		Messages:    messages,
		Temperature: a.Temperature(),
		MaxTokens:   r.tokenLimit,
	}

	// A schema-bound agent gets a response format and no tool surface at
	// all. Tool fields on the request must stay empty so backends cannot
	// emit calls the runner would have to reject.
	if ot := a.OutputType(); ot != nil {
		req.ResponseFormat = ot.ResponseFormat()

		return req, nil
	}

	if a.HasTools() {
		req.Tools = a.ToolManifest()
		req.ToolChoice = a.ToolChoice()

		parallel := a.ParallelToolCalls()
		req.ParallelToolCalls = &parallel
	}

	return req, nil
}
