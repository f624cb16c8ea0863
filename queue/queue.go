// Package queue moves agent runs through NATS. A Producer publishes
// RunRequest payloads on a subject; Workers join a queue group, execute each
// request against the swarm, and answer on the reply subject when the
// producer asked for one. One worker processes one run at a time; scale out
// by starting more workers on the same group.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/runner"
)

const (
	// DefaultSubject carries queued run requests.
	DefaultSubject = "agentswarm.runs"
	// DefaultQueue is the worker queue group name.
	DefaultQueue = "agentswarm-workers"
)

// Runner executes a named agent. *agentswarm.Swarm satisfies it.
type Runner interface {
	Run(ctx context.Context, agentName, query string, optFns ...func(o *runner.RunOptions)) (*runner.Result, error)
}

// RunRequest is the wire form of a queued run.
type RunRequest struct {
	Agent    string           `json:"agent"`
	Query    string           `json:"query"`
	Vars     core.ContextVars `json:"vars,omitempty"`
	MaxTurns int              `json:"max_turns,omitempty"`
}

// RunReply is the wire form of a completed run. Error is set instead of the
// result fields when the run failed.
type RunReply struct {
	Messages   []core.Message   `json:"messages,omitempty"`
	Agent      string           `json:"agent,omitempty"`
	Vars       core.ContextVars `json:"vars,omitempty"`
	Structured any              `json:"structured,omitempty"`
	Usage      model.Usage      `json:"usage"`
	Turns      int              `json:"turns"`
	Error      string           `json:"error,omitempty"`
}

// Connect establishes a NATS connection with the client name set.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("agentswarm"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// ProducerOptions configure a Producer.
type ProducerOptions struct {
	Subject string
	// Timeout bounds Request round trips when the caller's context carries
	// no earlier deadline.
	Timeout time.Duration
}

// Producer submits runs to the queue. The connection is caller-owned.
type Producer struct {
	nc   *nats.Conn
	opts ProducerOptions
}

// NewProducer creates a producer on an established connection.
func NewProducer(nc *nats.Conn, optFns ...func(o *ProducerOptions)) *Producer {
	opts := ProducerOptions{
		Subject: DefaultSubject,
		Timeout: 2 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Producer{nc: nc, opts: opts}
}

// Enqueue publishes a run without waiting for its outcome.
func (p *Producer) Enqueue(req RunRequest) error {
	data, err := encodeRequest(req)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.opts.Subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.opts.Subject, err)
	}
	return nil
}

// Request publishes a run and waits for a worker's reply. A reply carrying a
// remote error is returned alongside the error so callers can inspect it.
func (p *Producer) Request(ctx context.Context, req RunRequest) (*RunReply, error) {
	data, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	msg, err := p.nc.RequestWithContext(ctx, p.opts.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", p.opts.Subject, err)
	}

	var reply RunReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode run reply: %w", err)
	}
	if reply.Error != "" {
		return &reply, fmt.Errorf("remote run: %s", reply.Error)
	}
	return &reply, nil
}

func encodeRequest(req RunRequest) ([]byte, error) {
	if req.Agent == "" {
		return nil, fmt.Errorf("run request has no agent")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode run request: %w", err)
	}
	return data, nil
}

// WorkerOptions configure a Worker.
type WorkerOptions struct {
	Subject string
	// Queue is the queue group; workers sharing it split the load.
	Queue string
	// Timeout bounds each run.
	Timeout time.Duration
	Logger  logging.Logger
}

// Worker consumes queued runs and executes them against a Runner.
type Worker struct {
	nc     *nats.Conn
	runner Runner
	opts   WorkerOptions

	mu     sync.Mutex
	sub    *nats.Subscription
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorker creates a worker on an established connection.
func NewWorker(nc *nats.Conn, r Runner, optFns ...func(o *WorkerOptions)) *Worker {
	opts := WorkerOptions{
		Subject: DefaultSubject,
		Queue:   DefaultQueue,
		Timeout: 5 * time.Minute,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Worker{nc: nc, runner: r, opts: opts}
}

// Start subscribes to the run subject. Calling Start on a started worker is
// a no-op.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sub != nil {
		return nil
	}
	w.ctx, w.cancel = context.WithCancel(ctx)

	sub, err := w.nc.QueueSubscribe(w.opts.Subject, w.opts.Queue, w.handle)
	if err != nil {
		w.cancel()
		w.ctx = nil
		return fmt.Errorf("subscribe %s: %w", w.opts.Subject, err)
	}
	w.sub = sub

	w.opts.Logger.Info("queue.worker.started", "subject", w.opts.Subject, "queue", w.opts.Queue)
	return nil
}

// Stop drains the subscription and cancels in-flight runs.
func (w *Worker) Stop() error {
	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.ctx = nil
	w.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("drain subscription: %w", err)
	}
	w.opts.Logger.Info("queue.worker.stopped", "subject", w.opts.Subject)
	return nil
}

func (w *Worker) handle(msg *nats.Msg) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		return
	}

	reply := w.process(ctx, msg.Data)
	if msg.Reply == "" {
		return
	}

	data, err := json.Marshal(reply)
	if err != nil {
		w.opts.Logger.Error("queue.reply.encode_failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		w.opts.Logger.Error("queue.reply.failed", "error", err)
	}
}

// process executes one queued run and always produces a reply.
func (w *Worker) process(ctx context.Context, data []byte) *RunReply {
	var req RunRequest
	if err := json.Unmarshal(data, &req); err != nil {
		w.opts.Logger.Warn("queue.request.invalid", "error", err)
		return &RunReply{Error: fmt.Sprintf("decode run request: %v", err)}
	}
	if req.Agent == "" {
		return &RunReply{Error: "run request has no agent"}
	}

	runCtx := ctx
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := w.runner.Run(runCtx, req.Agent, req.Query, func(o *runner.RunOptions) {
		o.Vars = req.Vars.Clone()
		o.MaxTurns = req.MaxTurns
	})
	if err != nil {
		w.opts.Logger.Warn("queue.run.failed", "agent", req.Agent, "error", err, "duration", time.Since(start))
		return &RunReply{Error: err.Error()}
	}
	w.opts.Logger.Info("queue.run.complete", "agent", req.Agent, "turns", result.Turns, "duration", time.Since(start))

	reply := &RunReply{
		Messages:   result.Messages,
		Vars:       result.Vars,
		Structured: result.Structured,
		Usage:      result.Usage,
		Turns:      result.Turns,
	}
	if result.Agent != nil {
		reply.Agent = result.Agent.Name()
	}
	return reply
}
