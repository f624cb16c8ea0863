// Package a2a exposes registered agents to other processes over HTTP and
// lets a local run call out to agents hosted elsewhere. The server side
// mounts a small JSON API on a chi router; the client side wraps a remote
// agent as an ordinary tool, so a swarm can mix local and remote agents
// without the runner knowing the difference.
package a2a

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/runner"
)

const maxBodyBytes = 1 << 20

// Directory is the surface the server needs from the hosting application.
// *agentswarm.Swarm satisfies it.
type Directory interface {
	Agent(name string) (*agent.Agent, bool)
	Agents() []*agent.Agent
	RunMessages(ctx context.Context, agentName string, messages []core.Message, optFns ...func(o *runner.RunOptions)) (*runner.Result, error)
}

// RunRequest is the wire form of a remote run. Exactly one of Query or
// Messages must be set.
type RunRequest struct {
	Query    string           `json:"query,omitempty"`
	Messages []core.Message   `json:"messages,omitempty"`
	Vars     core.ContextVars `json:"vars,omitempty"`
	MaxTurns int              `json:"max_turns,omitempty"`
}

// RunResponse is the wire form of a completed run.
type RunResponse struct {
	Messages   []core.Message   `json:"messages"`
	Agent      string           `json:"agent"`
	Vars       core.ContextVars `json:"vars,omitempty"`
	Structured any              `json:"structured,omitempty"`
	Usage      model.Usage      `json:"usage"`
	Turns      int              `json:"turns"`
}

// AgentInfo describes one registered agent in the directory listing.
type AgentInfo struct {
	Name  string   `json:"name"`
	Model string   `json:"model,omitempty"`
	Tools []string `json:"tools,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Options holds overrides passed to NewServer().
type Options struct {
	// Logger for request failures. Defaults to NoOp.
	Logger logging.Logger
}

// Server serves the agent API. Obtain the handler via Handler and mount it
// on any http.Server.
type Server struct {
	directory Directory
	logger    logging.Logger
}

// NewServer creates a Server backed by the given agent directory.
func NewServer(directory Directory, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{
		directory: directory,
		logger:    opts.Logger,
	}
}

// Handler returns the routed HTTP handler:
//
//	GET  /healthz
//	GET  /v1/agents
//	POST /v1/agents/{name}/runs
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/agents", s.handleListAgents)
		r.Post("/agents/{name}/runs", s.handleRun)
	})

	return r
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	agents := s.directory.Agents()

	infos := make([]AgentInfo, 0, len(agents))
	for _, a := range agents {
		info := AgentInfo{
			Name:  a.Name(),
			Model: a.Model(),
		}

		for _, t := range a.Tools() {
			info.Tools = append(info.Tools, t.Name())
		}

		infos = append(infos, info)
	}

	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if _, ok := s.directory.Agent(name); !ok {
		writeError(w, http.StatusNotFound, "agent "+name+" not registered")

		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	seed := req.Messages

	switch {
	case req.Query != "" && len(req.Messages) > 0:
		writeError(w, http.StatusBadRequest, "query and messages are mutually exclusive")

		return
	case req.Query != "":
		seed = []core.Message{core.NewUserMessage(req.Query)}
	case len(req.Messages) == 0:
		writeError(w, http.StatusBadRequest, "query or messages is required")

		return
	}

	result, err := s.directory.RunMessages(r.Context(), name, seed, func(o *runner.RunOptions) {
		o.Vars = req.Vars
		o.MaxTurns = req.MaxTurns
	})
	if err != nil {
		s.logger.Error("a2a.run.failed", "agent", name, "error", err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Messages:   result.Messages,
		Agent:      result.Agent.Name(),
		Vars:       result.Vars,
		Structured: result.Structured,
		Usage:      result.Usage,
		Turns:      result.Turns,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
