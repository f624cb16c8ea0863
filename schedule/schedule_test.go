package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/runner"
)

// stubRunner records run invocations and serves a canned outcome.
type stubRunner struct {
	calls  atomic.Int32
	agent  atomic.Value
	result *runner.Result
	err    error
}

func (r *stubRunner) Run(ctx context.Context, agentName, query string, optFns ...func(o *runner.RunOptions)) (*runner.Result, error) {
	r.calls.Add(1)
	r.agent.Store(agentName)
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func okRunner() *stubRunner {
	return &stubRunner{result: &runner.Result{
		Messages: []core.Message{core.NewAssistantMessage("reporter", "done")},
	}}
}

type outcome struct {
	result *runner.Result
	err    error
}

func TestSchedulerDeliversResults(t *testing.T) {
	r := okRunner()
	s := New(r)

	delivered := make(chan outcome, 4)
	err := s.Add(Job{Name: "report", Agent: "reporter", Query: "daily summary", Schedule: "20ms"}, func(job Job, result *runner.Result, err error) {
		delivered <- outcome{result: result, err: err}
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case got := <-delivered:
		require.NoError(t, got.err)
		last, ok := got.result.Last()
		require.True(t, ok)
		assert.Equal(t, "done", last.Content)
		assert.Equal(t, "reporter", r.agent.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("job never delivered a result")
	}
}

func TestSchedulerDeliversErrors(t *testing.T) {
	r := &stubRunner{err: fmt.Errorf("model unavailable")}
	s := New(r)

	delivered := make(chan error, 4)
	err := s.Add(Job{Name: "failing", Agent: "reporter", Query: "summary", Schedule: "20ms"}, func(job Job, result *runner.Result, err error) {
		delivered <- err
	})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case err := <-delivered:
		assert.ErrorContains(t, err, "model unavailable")
	case <-time.After(2 * time.Second):
		t.Fatal("job never delivered an error")
	}
}

func TestSchedulerStopEndsFiring(t *testing.T) {
	r := okRunner()
	s := New(r)

	require.NoError(t, s.Add(Job{Name: "report", Agent: "reporter", Query: "q", Schedule: "20ms"}, nil))
	require.NoError(t, s.Start(context.Background()))

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Stop())

	fired := r.calls.Load()
	assert.GreaterOrEqual(t, fired, int32(1))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, fired, r.calls.Load(), "jobs fired after Stop")
}

func TestSchedulerRemove(t *testing.T) {
	r := okRunner()
	s := New(r)

	require.NoError(t, s.Add(Job{Name: "report", Agent: "reporter", Query: "q", Schedule: "1h"}, nil))
	require.NoError(t, s.Remove("report"))
	require.Error(t, s.Remove("report"))
}

func TestSchedulerRejectsDuplicateNames(t *testing.T) {
	s := New(okRunner())

	require.NoError(t, s.Add(Job{Name: "report", Agent: "a", Query: "q", Schedule: "1h"}, nil))
	err := s.Add(Job{Name: "report", Agent: "b", Query: "q", Schedule: "1h"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already scheduled")
}

func TestSchedulerRejectsJobWithoutAgent(t *testing.T) {
	s := New(okRunner())

	require.Error(t, s.Add(Job{Name: "report", Query: "q", Schedule: "1h"}, nil))
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	s := New(okRunner())

	require.Error(t, s.Add(Job{Name: "report", Agent: "a", Query: "q", Schedule: "whenever"}, nil))
}

func TestSchedulerNextRun(t *testing.T) {
	s := New(okRunner())
	require.NoError(t, s.Add(Job{Name: "report", Agent: "a", Query: "q", Schedule: "1h"}, nil))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	next := s.NextRun("report")
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	assert.Nil(t, s.NextRun("unknown"))
}

func TestSchedulerLifecycleIdempotent(t *testing.T) {
	s := New(okRunner())

	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

// ---- schedule parsing ----

func TestParseSchedule(t *testing.T) {
	for _, expr := range []string{"*/5 * * * *", "@hourly", "@every 30m", "30m", "100ms"} {
		sched, err := parseSchedule(expr)
		require.NoError(t, err, expr)
		require.NotNil(t, sched, expr)
	}

	for _, expr := range []string{"", "not-a-schedule", "-5m"} {
		_, err := parseSchedule(expr)
		require.Error(t, err, expr)
	}
}

func TestConstantDelayNext(t *testing.T) {
	now := time.Now()
	next := constantDelay(50 * time.Millisecond).Next(now)
	assert.Equal(t, now.Add(50*time.Millisecond), next)
}
