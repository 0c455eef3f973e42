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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
)

func result(kind evalcase.Kind, passed bool, duration float64, metadata map[string]any) *evalresult.CaseResult {
	return &evalresult.CaseResult{
		Kind:     kind,
		Input:    "input",
		Expected: "expected",
		Actual:   "actual",
		Passed:   passed,
		Duration: duration,
		Metadata: metadata,
	}
}

func TestComputeBasic(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, nil),
		result(evalcase.KindFunctional, true, 2.0, nil),
		result(evalcase.KindFunctional, false, 3.0, nil),
		result(evalcase.KindSafety, true, 2.0, nil),
	}

	engine := New(Config{Features: []Feature{FeatureBasic}})
	report := engine.Compute(results)

	require.NotNil(t, report.Basic)
	basic := report.Basic
	require.NotNil(t, basic.Accuracy)
	assert.InDelta(t, 75.0, *basic.Accuracy, 1e-9)
	// Without a ground-truth total, recall falls back to accuracy.
	require.NotNil(t, basic.Recall)
	assert.InDelta(t, 75.0, *basic.Recall, 1e-9)
	require.NotNil(t, basic.F1Score)
	assert.InDelta(t, 75.0, *basic.F1Score, 1e-9)
	require.NotNil(t, basic.TaskCompletionRate)
	assert.InDelta(t, 75.0, *basic.TaskCompletionRate, 1e-9)
	require.NotNil(t, basic.AverageResponseTime)
	assert.InDelta(t, 2.0, *basic.AverageResponseTime, 1e-9)
	assert.Equal(t, 4, basic.TotalCases)
	assert.Equal(t, 3, basic.PassedCases)
	assert.InDelta(t, 8.0, basic.TotalDuration, 1e-9)
	assert.Nil(t, report.Generalization)
}

func TestComputeBasicGroundTruthTotal(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, nil),
		result(evalcase.KindFunctional, true, 1.0, nil),
		result(evalcase.KindFunctional, true, 1.0, nil),
		result(evalcase.KindFunctional, false, 1.0, nil),
	}

	engine := New(Config{Features: []Feature{FeatureBasic}, GroundTruthTotal: 6})
	basic := engine.Compute(results).Basic

	require.NotNil(t, basic)
	assert.InDelta(t, 75.0, *basic.Accuracy, 1e-9)
	assert.InDelta(t, 50.0, *basic.Recall, 1e-9)
	// f1 = 2 * 0.75 * 0.5 / 1.25 = 0.6
	assert.InDelta(t, 60.0, *basic.F1Score, 1e-9)
}

func TestComputeEmptyLog(t *testing.T) {
	engine := New(Config{})
	report := engine.Compute(nil)

	require.NotNil(t, report.Basic)
	assert.Nil(t, report.Basic.Accuracy)
	assert.Nil(t, report.Basic.Recall)
	assert.Nil(t, report.Basic.F1Score)
	assert.Equal(t, 0, report.Basic.TotalCases)
	assert.Zero(t, report.Basic.TotalDuration)

	// Enabled dimensions always appear, even with nothing to measure.
	require.NotNil(t, report.Generalization)
	require.NotNil(t, report.Generalization.Portability)
	assert.Equal(t, 0, report.Generalization.Portability.DeploymentAttempts)
	assert.Nil(t, report.Generalization.Portability.CrossEnvironmentSuccessRate)
	require.NotNil(t, report.Generalization.Collaboration)
	assert.Equal(t, 0, report.Generalization.Collaboration.CollaborationCaseCount)

	assert.Nil(t, report.CorrelationAnalysis)
}

func TestComputeIdempotent(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "train"}),
		result(evalcase.KindFunctional, false, 3.0, map[string]any{evalcase.MetaSceneType: "non_train"}),
	}

	engine := New(Config{TotalSceneTypes: 4})
	first := engine.Compute(results)
	second := engine.Compute(results)
	assert.Equal(t, first, second)
}

func TestFeatureSetUnknownDropped(t *testing.T) {
	engine := New(Config{Features: []Feature{FeatureBasic, "nonsense"}})
	assert.True(t, engine.enabled(FeatureBasic))
	assert.False(t, engine.enabled(FeatureAdaptivity))

	report := engine.Compute(nil)
	assert.NotNil(t, report.Basic)
	assert.Nil(t, report.Generalization)
}

func TestComputeAdaptivity(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "train"}),
		result(evalcase.KindFunctional, false, 1.0, map[string]any{evalcase.MetaSceneType: "train"}),
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "non_train"}),
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "non_train"}),
		result(evalcase.KindFunctional, true, 2.5, map[string]any{
			evalcase.MetaSceneType:      "unknown",
			evalcase.MetaIsUnknownScene: true,
		}),
	}

	engine := New(Config{Features: []Feature{FeatureAdaptivity}, TotalSceneTypes: 4})
	report := engine.Compute(results)

	require.NotNil(t, report.Generalization)
	adaptivity := report.Generalization.Adaptivity
	require.NotNil(t, adaptivity)
	assert.InDelta(t, 50.0, *adaptivity.TrainCompletionRate, 1e-9)
	assert.InDelta(t, 100.0, *adaptivity.NonTrainCompletionRate, 1e-9)
	assert.InDelta(t, 0.5, *adaptivity.CrossSceneCompletionDeviation, 1e-9)
	assert.InDelta(t, 75.0, *adaptivity.SceneCoverage, 1e-9)
	assert.Equal(t, []string{"non_train", "train", "unknown"}, adaptivity.CoveredSceneTypes)
	require.NotNil(t, adaptivity.UnknownSceneAdaptationTime)
	assert.InDelta(t, 2.5, *adaptivity.UnknownSceneAdaptationTime, 1e-9)
	require.NotNil(t, adaptivity.UnknownSceneCompletionRate)
	assert.InDelta(t, 100.0, *adaptivity.UnknownSceneCompletionRate, 1e-9)
	assert.Equal(t, map[string]int{"train": 2, "non_train": 2, "unknown": 1}, adaptivity.SceneDistribution)
}

func TestComputeAdaptivitySceneCoverageWithoutUniverse(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "train"}),
	}
	engine := New(Config{Features: []Feature{FeatureAdaptivity}})
	adaptivity := engine.Compute(results).Generalization.Adaptivity

	require.NotNil(t, adaptivity.SceneCoverage)
	assert.InDelta(t, 100.0, *adaptivity.SceneCoverage, 1e-9)
}

func TestComputeRobustness(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaAbnormalInput: true}),
		result(evalcase.KindFunctional, false, 1.0, map[string]any{evalcase.MetaAbnormalInput: true}),
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaHighConcurrency: true}),
		result(evalcase.KindFunctional, false, 1.0, map[string]any{evalcase.MetaHighConcurrency: true}),
		result(evalcase.KindFunctional, true, 1.0, map[string]any{
			evalcase.MetaEnvironmentUnstable: true,
			evalcase.MetaTimeout:             true,
		}),
		result(evalcase.KindFunctional, true, 1.0, map[string]any{
			evalcase.MetaEnvironmentUnstable: true,
			evalcase.MetaTimeout:             false,
		}),
	}

	engine := New(Config{Features: []Feature{FeatureRobustness}})
	robustness := engine.Compute(results).Generalization.Robustness
	require.NotNil(t, robustness)

	assert.InDelta(t, 50.0, *robustness.AbnormalInputErrorRate, 1e-9)
	// Normal-concurrency bucket: the abnormal and unstable cases, 3 of 4
	// passed. Stability = 1 - 0.5/0.75 = 0.3333.
	require.NotNil(t, robustness.HighConcurrencyStability)
	assert.InDelta(t, 0.3333, *robustness.HighConcurrencyStability, 1e-9)
	// One of two unstable cases carries a true timeout flag.
	require.NotNil(t, robustness.EnvironmentFaultTolerance)
	assert.InDelta(t, 50.0, *robustness.EnvironmentFaultTolerance, 1e-9)
	assert.Equal(t, 2, robustness.AbnormalCaseCount)
	assert.Equal(t, 2, robustness.HighConcurrencyCaseCount)
	assert.Equal(t, 2, robustness.EnvironmentUnstableCaseCount)
	assert.InDelta(t, 75.0, *robustness.NormalConcurrencyCompletionRate, 1e-9)
	assert.InDelta(t, 50.0, *robustness.HighConcurrencyCompletionRate, 1e-9)
}

func TestComputeRobustnessFaultToleranceWithoutTimeoutFlags(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaEnvironmentUnstable: true}),
		result(evalcase.KindFunctional, false, 1.0, map[string]any{evalcase.MetaEnvironmentUnstable: true}),
	}

	engine := New(Config{Features: []Feature{FeatureRobustness}})
	robustness := engine.Compute(results).Generalization.Robustness

	// No timeout flags at all: fall back to the unstable pass rate.
	require.NotNil(t, robustness.EnvironmentFaultTolerance)
	assert.InDelta(t, 50.0, *robustness.EnvironmentFaultTolerance, 1e-9)
}

func TestComputePortability(t *testing.T) {
	baseline := 10.0
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{
			evalcase.MetaDeploymentAttempt:     true,
			evalcase.MetaDeploymentSuccess:     true,
			evalcase.MetaCompatibilityIssues:   1,
			evalcase.MetaAdaptationCost:        10.0,
			evalcase.MetaCompatibilityCoverage: 0.5,
		}),
		result(evalcase.KindFunctional, false, 1.0, map[string]any{
			evalcase.MetaDeploymentAttempt:     true,
			evalcase.MetaCompatibilityIssues:   2,
			evalcase.MetaAdaptationCost:        20.0,
			evalcase.MetaCompatibilityCoverage: 1.0,
		}),
	}

	engine := New(Config{Features: []Feature{FeaturePortability}, BaselineAdaptationCost: &baseline})
	portability := engine.Compute(results).Generalization.Portability
	require.NotNil(t, portability)

	assert.InDelta(t, 50.0, *portability.CrossEnvironmentSuccessRate, 1e-9)
	require.NotNil(t, portability.CompatibilityIssueCount)
	assert.Equal(t, 3, *portability.CompatibilityIssueCount)
	assert.InDelta(t, 1.5, *portability.AdaptationCostRatio, 1e-9)
	assert.InDelta(t, 75.0, *portability.CompatibilityCoverage, 1e-9)
	assert.Equal(t, 2, portability.DeploymentAttempts)
	assert.InDelta(t, 15.0, *portability.AverageAdaptationCost, 1e-9)
}

func TestComputeCollaboration(t *testing.T) {
	baseline := 3.0
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 4.0, map[string]any{
			evalcase.MetaCollaboration:         true,
			evalcase.MetaCollaborationDuration: 4.0,
			evalcase.MetaContributionRatio:     0.5,
		}),
		result(evalcase.KindFunctional, true, 6.0, map[string]any{
			evalcase.MetaCollaboration:         true,
			evalcase.MetaCollaborationDuration: 6.0,
			evalcase.MetaContributionRatio:     0.4,
			evalcase.MetaContributionWeight:    0.5,
		}),
	}

	engine := New(Config{Features: []Feature{FeatureCollaboration}, BaselineSingleTaskTime: &baseline})
	collaboration := engine.Compute(results).Generalization.Collaboration
	require.NotNil(t, collaboration)

	assert.InDelta(t, 100.0, *collaboration.InformationAccuracy, 1e-9)
	assert.InDelta(t, 2.0, *collaboration.CollaborationTimeDelta, 1e-9)
	// 0.5*1.0 + 0.4*0.5
	assert.InDelta(t, 0.7, *collaboration.CollaborationContribution, 1e-9)
	assert.Equal(t, 2, collaboration.CollaborationCaseCount)
	assert.InDelta(t, 5.0, *collaboration.AverageCollaborationTime, 1e-9)
	assert.InDelta(t, 3.0, *collaboration.BaselineSingleAgentTime, 1e-9)
}

func TestComputeCorrelation(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "train"}),
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaSceneType: "non_train"}),
		result(evalcase.KindFunctional, false, 3.0, nil),
		result(evalcase.KindFunctional, true, 3.0, nil),
	}

	engine := New(Config{})
	report := engine.Compute(results)
	correlation := report.CorrelationAnalysis
	require.NotNil(t, correlation)

	// Task completion rate aliases accuracy, so the deviation is zero.
	require.NotNil(t, correlation.AccuracyTaskCompletionCorrelation)
	assert.Zero(t, *correlation.AccuracyTaskCompletionCorrelation)
	// Accuracy == recall == f1 here, so the balance deviation is zero too.
	require.NotNil(t, correlation.F1Balance)
	assert.Zero(t, *correlation.F1Balance)

	tradeoff := correlation.TimeAccuracyTradeoff
	require.NotNil(t, tradeoff)
	// Mean duration 2.0: two fast cases (both passed), two slow (one passed).
	assert.InDelta(t, 100.0, tradeoff.FastCasesAccuracy, 1e-9)
	assert.InDelta(t, 50.0, tradeoff.SlowCasesAccuracy, 1e-9)
	assert.InDelta(t, 50.0, tradeoff.Difference, 1e-9)

	consistency := correlation.AdaptivityConsistency
	require.NotNil(t, consistency)
	// Overall accuracy 75%, both scene groups at 100%.
	assert.InDelta(t, 0.25, consistency.TrainVsOverall, 1e-9)
	assert.InDelta(t, 0.25, consistency.NonTrainVsOverall, 1e-9)
}

func TestComputeCorrelationSlowCasesOutperformFast(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, false, 1.0, nil),
		result(evalcase.KindFunctional, true, 3.0, nil),
	}

	engine := New(Config{})
	correlation := engine.Compute(results).CorrelationAnalysis
	require.NotNil(t, correlation)

	tradeoff := correlation.TimeAccuracyTradeoff
	require.NotNil(t, tradeoff)
	assert.InDelta(t, 0.0, tradeoff.FastCasesAccuracy, 1e-9)
	assert.InDelta(t, 100.0, tradeoff.SlowCasesAccuracy, 1e-9)
	// The gap is reported as an absolute deviation, never negative.
	assert.InDelta(t, 100.0, tradeoff.Difference, 1e-9)
}

func TestComputeCorrelationRobustnessImpact(t *testing.T) {
	results := []*evalresult.CaseResult{
		result(evalcase.KindFunctional, true, 1.0, map[string]any{evalcase.MetaAbnormalInput: true}),
		result(evalcase.KindFunctional, false, 1.0, map[string]any{evalcase.MetaAbnormalInput: true}),
		result(evalcase.KindFunctional, true, 1.0, nil),
		result(evalcase.KindFunctional, true, 1.0, nil),
	}

	engine := New(Config{})
	correlation := engine.Compute(results).CorrelationAnalysis
	require.NotNil(t, correlation)
	// Accuracy 75%, abnormal error rate 50% -> |75 - 50| / 100.
	require.NotNil(t, correlation.RobustnessImpact)
	assert.InDelta(t, 0.25, *correlation.RobustnessImpact, 1e-9)
}
