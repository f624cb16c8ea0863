// Package evaluation runs scripted cases against agents and checks the
// outcomes. A Case names an agent, feeds it a query, and lists the checks
// its run must satisfy. Paired with a scripted model backend this gives
// deterministic behavioral tests for agent wiring: routing, handoffs, and
// structured output.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/runner"
)

// Runner executes a named agent. *agentswarm.Swarm satisfies it.
type Runner interface {
	Run(ctx context.Context, agentName, query string, optFns ...func(o *runner.RunOptions)) (*runner.Result, error)
}

// Check inspects a completed run and returns an error describing how the
// run missed the expectation, or nil when it holds.
type Check func(result *runner.Result) error

// Case is one scripted evaluation: run Agent with Query and verify every
// Want check against the result.
type Case struct {
	Name     string
	Agent    string
	Query    string
	Vars     core.ContextVars
	MaxTurns int
	Want     []Check
}

// Report is the outcome of one case. Err is set when the run itself failed;
// Failures collects checks that did not hold.
type Report struct {
	Case     string
	Result   *runner.Result
	Err      error
	Failures []error
}

// Passed reports whether the run succeeded and every check held.
func (r *Report) Passed() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Summary renders the report as a single line suitable for logs and CI
// output.
func (r *Report) Summary() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("FAIL %s: %v", r.Case, r.Err)
	case len(r.Failures) > 0:
		msgs := make([]string, len(r.Failures))
		for i, err := range r.Failures {
			msgs[i] = err.Error()
		}
		return fmt.Sprintf("FAIL %s: %s", r.Case, strings.Join(msgs, "; "))
	default:
		return fmt.Sprintf("PASS %s", r.Case)
	}
}

// Options configure a Harness.
type Options struct {
	Logger logging.Logger
	// Timeout bounds each case.
	Timeout time.Duration
}

// Harness runs cases through a Runner.
type Harness struct {
	runner Runner
	opts   Options
}

// New creates an evaluation harness.
func New(r Runner, optFns ...func(o *Options)) *Harness {
	opts := Options{
		Logger:  logging.NoOpLogger{},
		Timeout: time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Harness{runner: r, opts: opts}
}

// RunCase executes a single case.
func (h *Harness) RunCase(ctx context.Context, c Case) *Report {
	report := &Report{Case: c.Name}

	if c.Agent == "" {
		report.Err = fmt.Errorf("case %q has no agent", c.Name)
		return report
	}

	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	result, err := h.runner.Run(ctx, c.Agent, c.Query, func(o *runner.RunOptions) {
		o.Vars = c.Vars.Clone()
		o.MaxTurns = c.MaxTurns
	})
	if err != nil {
		report.Err = err
		h.opts.Logger.Warn("evaluation.case.error", "case", c.Name, "error", err)
		return report
	}
	report.Result = result

	for _, check := range c.Want {
		if err := check(result); err != nil {
			report.Failures = append(report.Failures, err)
		}
	}

	if report.Passed() {
		h.opts.Logger.Info("evaluation.case.passed", "case", c.Name, "turns", result.Turns)
	} else {
		h.opts.Logger.Warn("evaluation.case.failed", "case", c.Name, "failures", len(report.Failures))
	}
	return report
}

// Run executes every case in order and returns one report per case.
func (h *Harness) Run(ctx context.Context, cases ...Case) []*Report {
	reports := make([]*Report, 0, len(cases))
	for _, c := range cases {
		reports = append(reports, h.RunCase(ctx, c))
	}
	return reports
}

// Passed reports whether every report passed.
func Passed(reports []*Report) bool {
	for _, r := range reports {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// ---- checks ----

// FinalAgent expects the run to end with the named agent active.
func FinalAgent(name string) Check {
	return func(result *runner.Result) error {
		var got string
		if result.Agent != nil {
			got = result.Agent.Name()
		}
		if got != name {
			return fmt.Errorf("final agent is %q, want %q", got, name)
		}
		return nil
	}
}

// Contains expects the last assistant message to contain substr.
func Contains(substr string) Check {
	return func(result *runner.Result) error {
		msg, ok := lastAssistant(result)
		if !ok {
			return fmt.Errorf("no assistant message to match %q", substr)
		}
		if !strings.Contains(msg.Content, substr) {
			return fmt.Errorf("assistant message %q does not contain %q", msg.Content, substr)
		}
		return nil
	}
}

// MaxTurns expects the run to finish within n model calls.
func MaxTurns(n int) Check {
	return func(result *runner.Result) error {
		if result.Turns > n {
			return fmt.Errorf("run took %d turns, want at most %d", result.Turns, n)
		}
		return nil
	}
}

// StructuredField expects a field of the structured output to equal want.
// The path is dot-separated and addresses JSON object keys; values are
// compared after JSON normalization, so ints and floats match their JSON
// number forms.
func StructuredField(path string, want any) Check {
	return func(result *runner.Result) error {
		if result.Structured == nil {
			return fmt.Errorf("run produced no structured output")
		}

		got, err := fieldAt(result.Structured, path)
		if err != nil {
			return err
		}
		wantNorm, err := normalize(want)
		if err != nil {
			return fmt.Errorf("normalize expected value for %s: %w", path, err)
		}
		if !reflect.DeepEqual(got, wantNorm) {
			return fmt.Errorf("structured field %s is %v, want %v", path, got, want)
		}
		return nil
	}
}

// lastAssistant returns the most recent assistant message carrying content.
func lastAssistant(result *runner.Result) (core.Message, bool) {
	for i := len(result.Messages) - 1; i >= 0; i-- {
		msg := result.Messages[i]
		if msg.Role == core.RoleAssistant && msg.Content != "" {
			return msg, true
		}
	}
	return core.Message{}, false
}

// fieldAt walks a dot-separated path through the JSON form of v.
func fieldAt(v any, path string) (any, error) {
	node, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("normalize structured output: %w", err)
	}

	for _, key := range strings.Split(path, ".") {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("structured field %s: %q is not an object", path, key)
		}
		node, ok = obj[key]
		if !ok {
			return nil, fmt.Errorf("structured field %s: key %q not found", path, key)
		}
	}
	return node, nil
}

// normalize round-trips v through JSON so comparisons see canonical types.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
