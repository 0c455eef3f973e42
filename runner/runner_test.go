//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/metrics"
	"trpc.group/trpc-go/trpc-agent-eval/status"
	"trpc.group/trpc-go/trpc-agent-eval/task"
)

// scriptedAgent answers by looking the prompt up in a reply table.
type scriptedAgent struct {
	replies map[string]string
	onCall  func(prompt string)
}

func (a *scriptedAgent) GenerateResponse(_ context.Context, prompt string) (string, error) {
	if a.onCall != nil {
		a.onCall(prompt)
	}
	reply, ok := a.replies[prompt]
	if !ok {
		return "", errors.New("no scripted reply")
	}
	return reply, nil
}

// blockingAgent waits for the context to expire.
type blockingAgent struct{}

func (blockingAgent) GenerateResponse(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func testCases() []*evalcase.Case {
	return []*evalcase.Case{
		{Kind: evalcase.KindFunctional, Input: "q1", Expected: "a1"},
		{Kind: evalcase.KindFunctional, Input: "q2", Expected: "a2"},
		{Kind: evalcase.KindSafety, Input: "q3", Expected: "refuse"},
	}
}

func allKinds() []evalcase.Kind {
	return []evalcase.Kind{evalcase.KindFunctional, evalcase.KindSafety}
}

func TestRunCompletes(t *testing.T) {
	a := &scriptedAgent{replies: map[string]string{
		"q1": "the answer is a1",
		"q2": "wrong",
		"q3": "I refuse to answer",
	}}
	r := New(a, WithEngine(metrics.New(metrics.Config{})))
	state := task.NewState("run-1")

	r.Run(context.Background(), state, testCases(), allKinds())

	snapshot, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, status.TaskStatusCompleted, snapshot.Status)
	assert.Equal(t, 100, snapshot.Progress)
	assert.Equal(t, 3, snapshot.TotalCases)
	require.Len(t, snapshot.Results, 3)
	assert.True(t, snapshot.Results[0].Passed)
	assert.False(t, snapshot.Results[1].Passed)
	assert.True(t, snapshot.Results[2].Passed)

	require.NotNil(t, snapshot.Summary)
	assert.Equal(t, 2, snapshot.Summary.Functional.Count)
	assert.Equal(t, 1, snapshot.Summary.Functional.PassedCount)
	assert.Equal(t, 1, snapshot.Summary.Safety.Count)
	assert.Equal(t, 1, snapshot.Summary.Safety.PassedCount)
	require.NotNil(t, snapshot.Summary.FeatureMetrics)
	require.NotNil(t, snapshot.Summary.FeatureMetrics.Basic)
}

func TestRunKindFilter(t *testing.T) {
	a := &scriptedAgent{replies: map[string]string{
		"q3": "I refuse to answer",
	}}
	r := New(a)
	state := task.NewState("run-2")

	r.Run(context.Background(), state, testCases(), []evalcase.Kind{evalcase.KindSafety})

	snapshot, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, status.TaskStatusCompleted, snapshot.Status)
	require.Len(t, snapshot.Results, 1)
	assert.Equal(t, evalcase.KindSafety, snapshot.Results[0].Kind)
}

func TestRunEmptyFilteredList(t *testing.T) {
	r := New(&scriptedAgent{}, WithEngine(metrics.New(metrics.Config{})))
	state := task.NewState("run-3")

	r.Run(context.Background(), state, testCases(), nil)

	snapshot, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, status.TaskStatusCompleted, snapshot.Status)
	assert.Equal(t, 0, snapshot.TotalCases)
	assert.Empty(t, snapshot.Results)
	require.NotNil(t, snapshot.Summary)
	assert.Zero(t, snapshot.Summary.Functional.Accuracy)
	assert.Zero(t, snapshot.Summary.Safety.SafetyRate)
	assert.Zero(t, snapshot.Summary.Overall.OverallScore)
	// With nothing evaluated the feature report is omitted even when an
	// engine is configured.
	assert.Nil(t, snapshot.Summary.FeatureMetrics)
}

func TestRunCancelBeforeStart(t *testing.T) {
	r := New(&scriptedAgent{})
	state := task.NewState("run-4")
	state.RequestCancel()

	r.Run(context.Background(), state, testCases(), allKinds())

	assert.Equal(t, status.TaskStatusCancelled, state.Status())
	assert.Empty(t, state.Results())
}

func TestRunCancelAtCaseBoundary(t *testing.T) {
	state := task.NewState("run-5")
	a := &scriptedAgent{
		replies: map[string]string{"q1": "a1", "q2": "a2", "q3": "refuse"},
		onCall: func(prompt string) {
			if prompt == "q1" {
				state.RequestCancel()
			}
		},
	}
	r := New(a)

	r.Run(context.Background(), state, testCases(), allKinds())

	// The in-flight case finishes and its result is kept; the rest never run.
	snapshot, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, status.TaskStatusCancelled, snapshot.Status)
	require.Len(t, snapshot.Results, 1)
	assert.Equal(t, "q1", snapshot.Results[0].Input)
	assert.Nil(t, snapshot.Summary)
}

func TestRunTimeoutSentinel(t *testing.T) {
	r := New(blockingAgent{},
		WithAttemptTimeout(5*time.Millisecond),
		WithTimeoutFloor(10*time.Millisecond))
	state := task.NewState("run-6")

	r.Run(context.Background(), state, testCases()[:1], allKinds())

	snapshot, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, status.TaskStatusCompleted, snapshot.Status)
	require.Len(t, snapshot.Results, 1)
	assert.Equal(t, TimeoutSentinel, snapshot.Results[0].Actual)
	assert.False(t, snapshot.Results[0].Passed)
	assert.Greater(t, snapshot.Results[0].Duration, 0.0)
}

func TestRunInvocationErrorSentinel(t *testing.T) {
	a := &scriptedAgent{replies: map[string]string{}}
	r := New(a)
	state := task.NewState("run-7")

	r.Run(context.Background(), state, testCases()[:1], allKinds())

	snapshot, err := state.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, status.TaskStatusCompleted, snapshot.Status)
	require.Len(t, snapshot.Results, 1)
	assert.True(t, strings.HasPrefix(snapshot.Results[0].Actual, "invocation failed: "))
	assert.False(t, snapshot.Results[0].Passed)
}

func TestEffectiveCaseTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		retries int
		floor   time.Duration
		want    time.Duration
	}{
		{name: "floor wins", timeout: 10 * time.Second, retries: 0, floor: DefaultTimeoutFloor, want: 90 * time.Second},
		{name: "scaled budget wins", timeout: 60 * time.Second, retries: 2, floor: DefaultTimeoutFloor, want: 180 * time.Second},
		{name: "zero timeout uses default", timeout: 0, retries: 0, floor: DefaultTimeoutFloor, want: 90 * time.Second},
		{name: "custom floor", timeout: time.Second, retries: 0, floor: 2 * time.Second, want: 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&scriptedAgent{},
				WithAttemptTimeout(tt.timeout),
				WithMaxRetries(tt.retries),
				WithTimeoutFloor(tt.floor))
			assert.Equal(t, tt.want, r.EffectiveCaseTimeout())
		})
	}
}
