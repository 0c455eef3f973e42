//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package task holds the mutable per-run state and the run registry.
//
// Each run has exactly one writer, its runner goroutine; status readers may
// poll concurrently at any time. Once a run reaches a terminal status its
// result log and summary never change.
package task

import (
	"math"
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/internal/clone"
	"trpc.group/trpc-go/trpc-agent-eval/metrics"
	"trpc.group/trpc-go/trpc-agent-eval/status"
)

// responsePreviewLimit caps the published response preview length in runes.
const responsePreviewLimit = 200

// Snapshot is an isolated copy of the run state at one point in time.
// Mutating a snapshot never affects the live state.
type Snapshot struct {
	// ID is the run identifier.
	ID string `json:"task_id"`
	// Status is the lifecycle status.
	Status status.TaskStatus `json:"status"`
	// Progress is 0-100, the share of cases already dispatched.
	Progress int `json:"progress"`
	// CurrentIndex is the 1-based index of the case in flight.
	CurrentIndex int `json:"current_index"`
	// TotalCases is the filtered case count.
	TotalCases int `json:"total_cases"`
	// CurrentCase is a short human-readable description of the case in flight.
	CurrentCase string `json:"current_case"`
	// CurrentInput is the full prompt of the case in flight.
	CurrentInput string `json:"current_input,omitempty"`
	// CurrentResponse is a preview of the latest agent reply.
	CurrentResponse string `json:"current_response,omitempty"`
	// CurrentDuration is the latest case duration in seconds.
	CurrentDuration float64 `json:"current_duration,omitempty"`
	// Results is the ordered result log.
	Results []*evalresult.CaseResult `json:"results"`
	// Summary is the end-of-run aggregate, nil until completion.
	Summary *metrics.Summary `json:"summary,omitempty"`
	// Error describes the failure for a Failed run.
	Error string `json:"error,omitempty"`
}

// State is the live, mutable record of one evaluation run.
type State struct {
	mu sync.RWMutex

	id              string
	status          status.TaskStatus
	progress        int
	currentIndex    int
	totalCases      int
	currentCase     string
	currentInput    string
	currentResponse string
	currentDuration float64
	results         []*evalresult.CaseResult
	summary         *metrics.Summary
	err             string

	cancelOnce sync.Once
	cancel     chan struct{}
}

// NewState creates a running state for the given run ID.
func NewState(id string) *State {
	return &State{
		id:      id,
		status:  status.TaskStatusRunning,
		results: make([]*evalresult.CaseResult, 0),
		cancel:  make(chan struct{}),
	}
}

// ID returns the run identifier.
func (s *State) ID() string {
	return s.id
}

// Status returns the current lifecycle status.
func (s *State) Status() status.TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RequestCancel asks the runner to stop at the next case boundary. The case
// in flight is allowed to finish. Safe to call any number of times.
func (s *State) RequestCancel() {
	s.cancelOnce.Do(func() {
		close(s.cancel)
	})
}

// CancelRequested reports whether a cancel request is pending.
func (s *State) CancelRequested() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}

// SetTotal records the filtered case count before the loop starts.
func (s *State) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalCases = total
}

// BeginCase publishes the case about to be dispatched. index is 1-based.
func (s *State) BeginCase(index int, kind evalcase.Kind, input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totalCases > 0 {
		s.progress = int(math.Round(100 * float64(index) / float64(s.totalCases)))
	}
	s.currentIndex = index
	s.currentCase = string(kind) + ": " + truncateRunes(input, 50)
	s.currentInput = input
	s.currentResponse = "calling agent..."
	s.currentDuration = 0
}

// PublishResponse records the latest agent reply preview and case duration.
func (s *State) PublishResponse(response string, durationSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentResponse = truncateRunes(response, responsePreviewLimit)
	s.currentDuration = durationSeconds
}

// AnnotateResponse appends a note to the published response preview.
func (s *State) AnnotateResponse(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentResponse = s.currentResponse + " (" + note + ")"
}

// AppendResult appends a finalized case result to the log.
func (s *State) AppendResult(result *evalresult.CaseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

// Results returns the live result log. The caller must not mutate it; this
// accessor exists for the runner, which is the single writer.
func (s *State) Results() []*evalresult.CaseResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Complete marks the run Completed and attaches the summary. No-op when the
// run is already terminal.
func (s *State) Complete(summary *metrics.Summary, currentCase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = status.TaskStatusCompleted
	s.progress = 100
	s.currentCase = currentCase
	s.summary = summary
}

// MarkCancelled marks the run Cancelled. No-op when already terminal.
func (s *State) MarkCancelled(currentCase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = status.TaskStatusCancelled
	s.currentCase = currentCase
}

// Fail marks the run Failed with the given error text. No-op when already
// terminal.
func (s *State) Fail(errText, currentCase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = status.TaskStatusFailed
	s.err = errText
	s.currentCase = currentCase
}

// Snapshot returns an isolated copy of the run state. The result log and
// summary are deep-copied so later runner writes never leak into a snapshot
// a reader already holds.
func (s *State) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, err := clone.Slice(s.results)
	if err != nil {
		return nil, err
	}
	var summary *metrics.Summary
	if s.summary != nil {
		summary, err = clone.Clone(s.summary)
		if err != nil {
			return nil, err
		}
	}

	return &Snapshot{
		ID:              s.id,
		Status:          s.status,
		Progress:        s.progress,
		CurrentIndex:    s.currentIndex,
		TotalCases:      s.totalCases,
		CurrentCase:     s.currentCase,
		CurrentInput:    s.currentInput,
		CurrentResponse: s.currentResponse,
		CurrentDuration: s.currentDuration,
		Results:         results,
		Summary:         summary,
		Error:           s.err,
	}, nil
}

// truncateRunes shortens text to at most limit runes, appending an ellipsis
// when anything was cut.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
