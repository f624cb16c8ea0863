// Package schedule runs named agents on recurring schedules. A Job binds an
// agent and a fixed query to a cron expression (or a plain duration); results
// are handed to a per-job delivery callback.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/runner"
)

// Runner executes a named agent. *agentswarm.Swarm satisfies it.
type Runner interface {
	Run(ctx context.Context, agentName, query string, optFns ...func(o *runner.RunOptions)) (*runner.Result, error)
}

// Job describes one recurring agent run.
type Job struct {
	Name  string
	Agent string
	Query string
	// Schedule is a cron expression ("*/5 * * * *"), a descriptor
	// ("@hourly"), or a Go duration ("30s").
	Schedule string
	// Vars seed the run's context variables on every firing.
	Vars core.ContextVars
}

// Deliver receives the outcome of a job firing. Result is nil when err is
// non-nil.
type Deliver func(job Job, result *runner.Result, err error)

// Options configure the scheduler.
type Options struct {
	Logger logging.Logger
	// Timeout bounds each firing; the run's context is canceled after it.
	Timeout time.Duration
}

// Scheduler fires registered jobs against a Runner. Jobs added before or
// after Start both take effect; firings while stopped are skipped.
type Scheduler struct {
	runner Runner
	cron   *cron.Cron
	opts   Options

	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// New creates a scheduler driving the given runner.
func New(r Runner, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Logger:  logging.NoOpLogger{},
		Timeout: 5 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Scheduler{
		runner:  r,
		cron:    cron.New(),
		opts:    opts,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a job. Job names must be unique; deliver may be nil, in which
// case outcomes are only logged.
func (s *Scheduler) Add(job Job, deliver Deliver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Agent == "" {
		return fmt.Errorf("job %q has no agent", job.Name)
	}
	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("job %q already scheduled", job.Name)
	}

	sched, err := parseSchedule(job.Schedule)
	if err != nil {
		return fmt.Errorf("job %q schedule %q: %w", job.Name, job.Schedule, err)
	}

	entryID := s.cron.Schedule(sched, cron.FuncJob(func() {
		s.fire(job, deliver)
	}))
	s.entries[job.Name] = entryID

	s.opts.Logger.Info("schedule.job.added", "job", job.Name, "agent", job.Agent, "schedule", job.Schedule)
	return nil
}

// fire executes one job firing against the runner.
func (s *Scheduler) fire(job Job, deliver Deliver) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		s.opts.Logger.Debug("schedule.job.skipped", "job", job.Name)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Run(runCtx, job.Agent, job.Query, func(o *runner.RunOptions) {
		o.Vars = job.Vars.Clone()
	})
	if err != nil {
		s.opts.Logger.Warn("schedule.job.failed",
			"job", job.Name, "agent", job.Agent, "error", err, "duration", time.Since(start))
	} else {
		s.opts.Logger.Info("schedule.job.complete",
			"job", job.Name, "agent", job.Agent, "turns", result.Turns, "duration", time.Since(start))
	}

	if deliver != nil {
		deliver(job, result, err)
	}
}

// Remove unregisters a job by name.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("job %q not scheduled", name)
	}
	s.cron.Remove(entryID)
	delete(s.entries, name)

	s.opts.Logger.Info("schedule.job.removed", "job", name)
	return nil
}

// NextRun returns the next firing time for a job, or nil if unknown or the
// scheduler has not started.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	entryID, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	entry := s.cron.Entry(entryID)
	if entry.ID == 0 || entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}

// Start begins firing jobs. Calling Start on a started scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.started = true
	return nil
}

// Stop cancels in-flight runs and waits for job goroutines to finish.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.ctx = nil
	s.started = false
	// Release the lock before waiting: a firing job reads s.ctx under the
	// same lock and must be able to observe the shutdown.
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	return nil
}

// parseSchedule accepts a standard five-field cron expression, a cron
// descriptor, or a Go duration. Durations keep sub-second resolution, which
// cron.Every does not.
func parseSchedule(schedule string) (cron.Schedule, error) {
	if schedule == "" {
		return nil, fmt.Errorf("empty schedule")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if sched, err := parser.Parse(schedule); err == nil {
		return sched, nil
	}

	dur, err := time.ParseDuration(schedule)
	if err != nil {
		return nil, fmt.Errorf("not a cron expression or duration")
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	return constantDelay(dur), nil
}

// constantDelay fires at a fixed interval.
type constantDelay time.Duration

func (d constantDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}
