//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package runner drives evaluation cases through the agent under test.
//
// Cases run strictly one at a time. Cancellation is cooperative and checked
// only at case boundaries; a case already in flight finishes and its result
// is kept. Timeouts and invocation errors never abort the run, they are
// recorded as failing results and the loop moves on.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-agent-eval/agent"
	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/metrics"
	"trpc.group/trpc-go/trpc-agent-eval/oracle"
	"trpc.group/trpc-go/trpc-agent-eval/task"
	"trpc.group/trpc-go/trpc-agent-eval/telemetry"
)

// DefaultTimeoutFloor is the minimum effective per-case timeout. A single
// slow-but-alive agent call gets at least this long regardless of how short
// the configured attempt timeout is.
const DefaultTimeoutFloor = 90 * time.Second

// Published result sentinels for cases that never produced agent output.
const (
	// TimeoutSentinel replaces the agent output when the per-case deadline
	// expired.
	TimeoutSentinel = "evaluation timed out: no response within the per-case limit"
	// errorSentinelPrefix prefixes the agent output for non-timeout
	// invocation failures.
	errorSentinelPrefix = "invocation failed: "
)

// Status line fragments published to the task state.
const (
	currentCompleted  = "evaluation complete"
	currentCancelled  = "evaluation cancelled"
	currentFailed     = "evaluation failed"
	currentNoMatching = "no matching cases"
)

// Runner executes one evaluation run at a time over a fixed agent.
type Runner struct {
	agent  agent.Agent
	oracle *oracle.Oracle

	engine  *metrics.Engine
	weights metrics.Weights

	attemptTimeout time.Duration
	maxRetries     int
	timeoutFloor   time.Duration
}

// Option configures the runner.
type Option func(*Runner)

// WithOracle sets the verdict oracle. Defaults to a containment-only oracle.
func WithOracle(o *oracle.Oracle) Option {
	return func(r *Runner) {
		r.oracle = o
	}
}

// WithEngine sets the metrics engine. A nil engine disables the feature
// metrics report; the summary then carries only the accuracy aggregates.
func WithEngine(engine *metrics.Engine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithWeights sets the overall-score weights.
func WithWeights(weights metrics.Weights) Option {
	return func(r *Runner) {
		r.weights = weights
	}
}

// WithAttemptTimeout sets the configured timeout for a single agent attempt.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.attemptTimeout = timeout
	}
}

// WithMaxRetries sets the retry count used to scale the per-case budget.
func WithMaxRetries(maxRetries int) Option {
	return func(r *Runner) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		r.maxRetries = maxRetries
	}
}

// WithTimeoutFloor overrides the minimum effective per-case timeout.
func WithTimeoutFloor(floor time.Duration) Option {
	return func(r *Runner) {
		r.timeoutFloor = floor
	}
}

// New creates a runner for the given agent.
func New(a agent.Agent, opts ...Option) *Runner {
	r := &Runner{
		agent:          a,
		oracle:         oracle.New(),
		weights:        metrics.DefaultWeights(),
		attemptTimeout: agent.DefaultTimeout,
		timeoutFloor:   DefaultTimeoutFloor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EffectiveCaseTimeout returns the per-case budget: the attempt timeout
// scaled by the retry count, but never below the floor. The agent client
// retries internally, so the case budget has to cover every attempt.
func (r *Runner) EffectiveCaseTimeout() time.Duration {
	timeout := r.attemptTimeout
	if timeout <= 0 {
		timeout = agent.DefaultTimeout
	}
	budget := timeout * time.Duration(r.maxRetries+1)
	if budget < r.timeoutFloor {
		budget = r.timeoutFloor
	}
	return budget
}

// Run executes the kinds-filtered cases sequentially, mutating state as the
// single writer. It always leaves state in a terminal status.
func (r *Runner) Run(ctx context.Context, state *task.State, cases []*evalcase.Case, kinds []evalcase.Kind) {
	started := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("evaluation run %s panicked: %v", state.ID(), rec)
			state.Fail(fmt.Sprintf("internal error: %v", rec), currentFailed)
		}
	}()

	if state.CancelRequested() {
		state.MarkCancelled(currentCancelled)
		return
	}

	filtered := evalcase.Filter(cases, kinds)
	state.SetTotal(len(filtered))

	if len(filtered) == 0 {
		state.Complete(r.buildSummary(nil, started), currentNoMatching)
		return
	}

	caseTimeout := r.EffectiveCaseTimeout()
	for index, c := range filtered {
		if state.CancelRequested() {
			state.MarkCancelled(currentCancelled)
			return
		}
		r.runCase(ctx, state, c, index+1, caseTimeout)
	}

	state.Complete(r.buildSummary(state.Results(), started), currentCompleted)
	log.Infof("evaluation run %s completed: %d cases", state.ID(), len(filtered))
}

// runCase dispatches one case, judges the output and appends the result.
func (r *Runner) runCase(ctx context.Context, state *task.State, c *evalcase.Case, index int, caseTimeout time.Duration) {
	state.BeginCase(index, c.Kind, c.Input)

	caseCtx, cancel := context.WithTimeout(ctx, caseTimeout)
	defer cancel()

	caseStarted := time.Now()
	actual, err := r.agent.GenerateResponse(caseCtx, c.Input)
	duration := time.Since(caseStarted).Seconds()

	failed := false
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || caseCtx.Err() == context.DeadlineExceeded):
		actual = TimeoutSentinel
		failed = true
	case err != nil:
		actual = errorSentinelPrefix + err.Error()
		failed = true
	}
	state.PublishResponse(actual, duration)

	passed := false
	if !failed {
		var note string
		passed, note = r.oracle.Verdict(ctx, c.Kind, c.Expected, actual)
		if note != "" {
			state.AnnotateResponse(note)
		}
	}

	state.AppendResult(&evalresult.CaseResult{
		Kind:     c.Kind,
		Category: c.Category,
		Input:    c.Input,
		Expected: c.Expected,
		Actual:   actual,
		Passed:   passed,
		Duration: duration,
		Metadata: c.Metadata,
	})
	telemetry.RecordCase(ctx, string(c.Kind), passed, duration)
}

// buildSummary aggregates the run results, attaching the feature metrics
// report when an engine is configured. An empty log carries no report; the
// summary ratios alone describe a run with nothing to evaluate.
func (r *Runner) buildSummary(results []*evalresult.CaseResult, started time.Time) *metrics.Summary {
	var report *metrics.Report
	if r.engine != nil && len(results) > 0 {
		report = r.engine.Compute(results)
	}
	return metrics.BuildSummary(results, report, r.weights, time.Since(started).Seconds())
}
