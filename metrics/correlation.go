//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

package metrics

import (
	"math"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
)

// computeCorrelation derives deviation measures between already-computed
// metrics. Each entry is emitted only when its inputs are present; the
// report is dropped entirely when no entry applies.
func (e *Engine) computeCorrelation(results []*evalresult.CaseResult, report *Report) *CorrelationReport {
	basic := report.Basic
	if basic == nil {
		return nil
	}
	correlation := &CorrelationReport{}
	present := false

	if basic.Accuracy != nil && basic.TaskCompletionRate != nil {
		correlation.AccuracyTaskCompletionCorrelation =
			ptr(roundTo(math.Abs(*basic.Accuracy-*basic.TaskCompletionRate)/100, 4))
		present = true
	}
	if basic.F1Score != nil && basic.Accuracy != nil && basic.Recall != nil {
		balanced := (*basic.Accuracy + *basic.Recall) / 2
		correlation.F1Balance = ptr(roundTo(math.Abs(*basic.F1Score-balanced)/100, 4))
		present = true
	}
	if tradeoff := computeTimeAccuracyTradeoff(results); tradeoff != nil {
		correlation.TimeAccuracyTradeoff = tradeoff
		present = true
	}
	if gen := report.Generalization; gen != nil && gen.Adaptivity != nil && basic.Accuracy != nil {
		adaptivity := gen.Adaptivity
		if adaptivity.TrainCompletionRate != nil && adaptivity.NonTrainCompletionRate != nil {
			correlation.AdaptivityConsistency = &AdaptivityConsistency{
				TrainVsOverall:    roundTo(math.Abs(*adaptivity.TrainCompletionRate-*basic.Accuracy)/100, 4),
				NonTrainVsOverall: roundTo(math.Abs(*adaptivity.NonTrainCompletionRate-*basic.Accuracy)/100, 4),
			}
			present = true
		}
	}
	if gen := report.Generalization; gen != nil && gen.Robustness != nil && basic.Accuracy != nil {
		if errorRate := gen.Robustness.AbnormalInputErrorRate; errorRate != nil {
			correlation.RobustnessImpact =
				ptr(roundTo(math.Abs(*basic.Accuracy-(100-*errorRate))/100, 4))
			present = true
		}
	}

	if !present {
		return nil
	}
	return correlation
}

// computeTimeAccuracyTradeoff splits the log around the mean response time
// and compares accuracy on each side. Requires both sides to be non-empty.
func computeTimeAccuracyTradeoff(results []*evalresult.CaseResult) *TimeAccuracyTradeoff {
	if len(results) == 0 {
		return nil
	}
	total := 0.0
	count := 0
	for _, r := range results {
		if r != nil {
			total += r.Duration
			count++
		}
	}
	if count == 0 {
		return nil
	}
	average := total / float64(count)

	var fast, slow []*evalresult.CaseResult
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Duration < average {
			fast = append(fast, r)
		} else {
			slow = append(slow, r)
		}
	}
	fastRate := evalresult.PassRate(fast)
	slowRate := evalresult.PassRate(slow)
	if fastRate == nil || slowRate == nil {
		return nil
	}
	fastAccuracy := roundTo(*fastRate*100, 2)
	slowAccuracy := roundTo(*slowRate*100, 2)
	return &TimeAccuracyTradeoff{
		FastCasesAccuracy: fastAccuracy,
		SlowCasesAccuracy: slowAccuracy,
		Difference:        roundTo(math.Abs(fastAccuracy-slowAccuracy), 2),
	}
}
