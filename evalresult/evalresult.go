//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package evalresult defines per-case evaluation results.
package evalresult

import (
	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
)

// CaseResult records the outcome of a single evaluated case. It is created
// exactly once by the runner and immutable afterward. Actual may hold a
// timeout or invocation-failure sentinel instead of agent output; such cases
// still carry a verdict (always failed) and a duration.
type CaseResult struct {
	// Kind mirrors the case kind.
	Kind evalcase.Kind `json:"type"`
	// Category mirrors the case category.
	Category string `json:"category,omitempty"`
	// Input is the prompt that was sent to the agent.
	Input string `json:"input"`
	// Expected is the reference output or marker phrase.
	Expected string `json:"expected"`
	// Actual is the agent output, or a failure sentinel.
	Actual string `json:"actual"`
	// Passed is the oracle verdict. Never unset in a finalized result.
	Passed bool `json:"passed"`
	// Duration is the wall-clock case time in seconds, >= 0.
	Duration float64 `json:"duration"`
	// Metadata mirrors the case metadata tags.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PassRate returns passed/total over the given results, or nil when the
// slice is empty.
func PassRate(results []*CaseResult) *float64 {
	if len(results) == 0 {
		return nil
	}
	passed := 0
	for _, r := range results {
		if r != nil && r.Passed {
			passed++
		}
	}
	rate := float64(passed) / float64(len(results))
	return &rate
}

// CountPassed returns the number of passed results.
func CountPassed(results []*CaseResult) int {
	passed := 0
	for _, r := range results {
		if r != nil && r.Passed {
			passed++
		}
	}
	return passed
}

// FilterKind returns the results of the given kind, preserving order.
func FilterKind(results []*CaseResult, kind evalcase.Kind) []*CaseResult {
	filtered := make([]*CaseResult, 0, len(results))
	for _, r := range results {
		if r != nil && r.Kind == kind {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
