package a2a

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/tool"
)

// AgentToolOptions holds overrides passed to NewAgentTool().
type AgentToolOptions struct {
	// HTTPClient used for requests. Defaults to a client with a 60s
	// timeout; remote runs include model calls and are slow.
	HTTPClient *http.Client

	// Description overrides the generated tool description.
	Description string

	// ForwardVars sends the local context variables along with the query,
	// seeding the remote run.
	ForwardVars bool
}

// NewAgentTool wraps the remote agent hosted at baseURL as a local tool
// named "ask_<agent>". The model sees a single required "query" argument;
// the tool result is the remote agent's final answer.
func NewAgentTool(agentName, baseURL string, optFns ...func(o *AgentToolOptions)) tool.Tool {
	opts := AgentToolOptions{
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		Description: fmt.Sprintf("Ask the remote agent %q. Use this for requests in its area of expertise.", agentName),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/v1/agents/" + url.PathEscape(agentName) + "/runs"

	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The question or task for the remote agent",
			},
		},
		"required": []string{"query"},
	}

	return tool.NewFunctionTool("ask_"+agentName, opts.Description, parameters, func(tc *core.ToolContext, args map[string]any) (any, error) {
		query, _ := args["query"].(string)

		runReq := RunRequest{Query: query}
		if opts.ForwardVars {
			runReq.Vars = tc.Vars()
		}

		payload, err := json.Marshal(runReq)
		if err != nil {
			return nil, fmt.Errorf("encode run request: %w", err)
		}

		req, err := http.NewRequestWithContext(tc.Context(), http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build run request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := opts.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("call remote agent %s: %w", agentName, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			var apiErr errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
				return nil, fmt.Errorf("remote agent %s: %s", agentName, apiErr.Error)
			}

			return nil, fmt.Errorf("remote agent %s: unexpected status %d", agentName, resp.StatusCode)
		}

		var runResp RunResponse
		if err := json.NewDecoder(resp.Body).Decode(&runResp); err != nil {
			return nil, fmt.Errorf("decode run response: %w", err)
		}

		return finalAnswer(runResp.Messages), nil
	})
}

// finalAnswer picks the last assistant text of a remote transcript. Runs
// that end on a budget can leave a tool message last, so walk backwards.
func finalAnswer(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleAssistant && messages[i].Content != "" {
			return messages[i].Content
		}
	}

	return ""
}
