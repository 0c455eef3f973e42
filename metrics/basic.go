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
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
)

// computeBasic derives accuracy, recall, F1 and timing metrics.
func (e *Engine) computeBasic(results []*evalresult.CaseResult) *BasicReport {
	total := len(results)
	passed := evalresult.CountPassed(results)
	totalDuration := 0.0
	for _, r := range results {
		if r != nil {
			totalDuration += r.Duration
		}
	}

	var accuracy, recall, f1, averageTime *float64
	if total > 0 {
		accuracy = ptr(float64(passed) / float64(total))
		averageTime = ptr(totalDuration / float64(total))
	}

	// Without a configured ground-truth total the case count stands in for
	// it, so recall equals accuracy.
	groundTruthTotal := e.config.GroundTruthTotal
	if groundTruthTotal <= 0 {
		groundTruthTotal = total
	}
	if groundTruthTotal > 0 {
		recall = ptr(float64(passed) / float64(groundTruthTotal))
	}

	if accuracy != nil && recall != nil && *accuracy+*recall > 0 {
		f1 = ptr(2 * *accuracy * *recall / (*accuracy + *recall))
	}

	return &BasicReport{
		Accuracy:            percent(accuracy),
		Recall:              percent(recall),
		F1Score:             percent(f1),
		TaskCompletionRate:  percent(accuracy), // alias of accuracy in the basic report
		AverageResponseTime: rounded(averageTime, 3),
		TotalCases:          total,
		PassedCases:         passed,
		TotalDuration:       roundTo(totalDuration, 3),
	}
}
