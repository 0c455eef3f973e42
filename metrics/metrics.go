//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package metrics computes layered quality reports from evaluation results.
//
// The engine is a pure function of (result log, config): it performs no I/O,
// never mutates its inputs, and yields identical reports for identical
// inputs. Rate-like values are reported as percentages rounded to two
// decimals; durations are seconds rounded to three.
package metrics

import (
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
)

// Feature identifies one computable dimension of the report.
type Feature string

const (
	// FeatureBasic enables accuracy/recall/F1 and timing metrics.
	FeatureBasic Feature = "basic"
	// FeatureAdaptivity enables cross-scene generalization metrics.
	FeatureAdaptivity Feature = "adaptivity"
	// FeatureRobustness enables input/load/environment tolerance metrics.
	FeatureRobustness Feature = "robustness"
	// FeaturePortability enables cross-environment deployment metrics.
	FeaturePortability Feature = "portability"
	// FeatureCollaboration enables multi-agent task sharing metrics.
	FeatureCollaboration Feature = "collaboration"
)

// AllFeatures lists every supported feature.
var AllFeatures = []Feature{
	FeatureBasic,
	FeatureAdaptivity,
	FeatureRobustness,
	FeaturePortability,
	FeatureCollaboration,
}

// Config is the side-channel configuration supplied once per run.
type Config struct {
	// Features selects the dimensions to compute. Empty means all; unknown
	// names are dropped.
	Features []Feature `json:"features,omitempty" yaml:"features,omitempty"`
	// GroundTruthTotal is the number of true positives in the data set. When
	// not supplied (or <= 0) the case count is used instead, which makes
	// recall collapse to accuracy.
	GroundTruthTotal int `json:"ground_truth_total,omitempty" yaml:"ground_truth_total,omitempty"`
	// TotalSceneTypes is the total number of scene types under test, used as
	// the scene-coverage denominator.
	TotalSceneTypes int `json:"total_scene_types,omitempty" yaml:"total_scene_types,omitempty"`
	// BaselineSingleTaskTime is the single-agent baseline time in seconds
	// used when a collaboration case carries no per-case baseline.
	BaselineSingleTaskTime *float64 `json:"baseline_single_task_time,omitempty" yaml:"baseline_single_task_time,omitempty"`
	// BaselineAdaptationCost normalizes the portability adaptation cost.
	BaselineAdaptationCost *float64 `json:"baseline_adaptation_cost,omitempty" yaml:"baseline_adaptation_cost,omitempty"`
}

// Report is the layered metrics report. It is purely derived data,
// recomputable at any time from the result log and config.
type Report struct {
	// Basic holds accuracy/recall/F1 and timing metrics.
	Basic *BasicReport `json:"basic,omitempty"`
	// Generalization holds the enabled generalization sub-reports.
	Generalization *GeneralizationReport `json:"generalization,omitempty"`
	// CorrelationAnalysis holds simple deviation measures between computed
	// metrics. These are diagnostic aids, not formal statistics.
	CorrelationAnalysis *CorrelationReport `json:"correlation_analysis,omitempty"`
}

// BasicReport holds the basic metrics. Rate fields are percentages.
type BasicReport struct {
	// Accuracy is passed/total. Nil when the log is empty.
	Accuracy *float64 `json:"accuracy"`
	// Recall is passed/ground-truth-total.
	Recall *float64 `json:"recall"`
	// F1Score is the harmonic mean of accuracy and recall.
	F1Score *float64 `json:"f1_score"`
	// TaskCompletionRate aliases accuracy in the basic report.
	TaskCompletionRate *float64 `json:"task_completion_rate"`
	// AverageResponseTime is the mean case duration in seconds.
	AverageResponseTime *float64 `json:"average_response_time"`
	// TotalCases is the result log length.
	TotalCases int `json:"total_cases"`
	// PassedCases counts passing results.
	PassedCases int `json:"passed_cases"`
	// TotalDuration is the summed case time in seconds.
	TotalDuration float64 `json:"total_duration"`
}

// GeneralizationReport groups the enabled generalization sub-reports.
// Only computed sub-dimensions appear.
type GeneralizationReport struct {
	Adaptivity    *AdaptivityReport    `json:"adaptivity,omitempty"`
	Robustness    *RobustnessReport    `json:"robustness,omitempty"`
	Portability   *PortabilityReport   `json:"portability,omitempty"`
	Collaboration *CollaborationReport `json:"collaboration,omitempty"`
}

// AdaptivityReport measures cross-scene generalization.
type AdaptivityReport struct {
	// TrainCompletionRate is the pass rate within the "train" scene group.
	TrainCompletionRate *float64 `json:"train_completion_rate"`
	// NonTrainCompletionRate is the pass rate within the "non_train" group.
	NonTrainCompletionRate *float64 `json:"non_train_completion_rate"`
	// CrossSceneCompletionDeviation is non-train rate minus train rate, on
	// the raw 0-1 scale.
	CrossSceneCompletionDeviation *float64 `json:"cross_scene_completion_deviation"`
	// SceneCoverage is distinct scenes over configured total scene types.
	SceneCoverage *float64 `json:"scene_coverage"`
	// CoveredSceneTypes lists the distinct scenes observed, sorted.
	CoveredSceneTypes []string `json:"covered_scene_types"`
	// UnknownSceneAdaptationTime is the mean adaptation time of
	// unknown-scene cases in seconds.
	UnknownSceneAdaptationTime *float64 `json:"unknown_scene_adaptation_time"`
	// UnknownSceneCompletionRate is the pass rate within the "unknown" group.
	UnknownSceneCompletionRate *float64 `json:"unknown_scene_completion_rate"`
	// SceneDistribution maps each scene to its raw case count.
	SceneDistribution map[string]int `json:"scene_distribution"`
}

// RobustnessReport measures input, load and environment tolerance.
type RobustnessReport struct {
	// AbnormalInputErrorRate is 1 minus the pass rate of abnormal-input cases.
	AbnormalInputErrorRate *float64 `json:"abnormal_input_error_rate"`
	// HighConcurrencyStability is 1 - (high-concurrency pass rate / normal
	// pass rate), on the raw scale; falls back to the high-concurrency pass
	// rate alone when the denominator is unusable.
	HighConcurrencyStability *float64 `json:"high_concurrency_stability"`
	// EnvironmentFaultTolerance is the tolerance under unstable environments.
	EnvironmentFaultTolerance *float64 `json:"environment_fault_tolerance"`
	// AbnormalCaseCount counts abnormal-input cases.
	AbnormalCaseCount int `json:"abnormal_case_count"`
	// HighConcurrencyCaseCount counts high-concurrency cases.
	HighConcurrencyCaseCount int `json:"high_concurrency_case_count"`
	// EnvironmentUnstableCaseCount counts unstable-environment cases.
	EnvironmentUnstableCaseCount int `json:"environment_unstable_case_count"`
	// NormalConcurrencyCompletionRate is the pass rate of cases not flagged
	// high-concurrency.
	NormalConcurrencyCompletionRate *float64 `json:"normal_concurrency_completion_rate"`
	// HighConcurrencyCompletionRate is the pass rate of high-concurrency cases.
	HighConcurrencyCompletionRate *float64 `json:"high_concurrency_completion_rate"`
}

// PortabilityReport measures cross-environment deployment quality.
// When no deployment-attempt cases exist every nullable field is null and
// DeploymentAttempts is zero; this is never a computation error.
type PortabilityReport struct {
	// CrossEnvironmentSuccessRate is the fraction of attempts that ran on
	// the first deployment.
	CrossEnvironmentSuccessRate *float64 `json:"cross_environment_success_rate"`
	// CompatibilityIssueCount sums observed compatibility errors.
	CompatibilityIssueCount *int `json:"compatibility_issue_count"`
	// AdaptationCostRatio is the mean adaptation cost over the configured
	// baseline, or the raw mean when no baseline is configured.
	AdaptationCostRatio *float64 `json:"adaptation_cost_ratio"`
	// CompatibilityCoverage is the mean compatibility checklist coverage.
	CompatibilityCoverage *float64 `json:"compatibility_coverage"`
	// DeploymentAttempts counts deployment-attempt cases.
	DeploymentAttempts int `json:"deployment_attempts"`
	// AverageAdaptationCost is the raw mean adaptation cost.
	AverageAdaptationCost *float64 `json:"average_adaptation_cost"`
}

// CollaborationReport measures multi-agent task sharing.
type CollaborationReport struct {
	// InformationAccuracy is the pass rate of collaboration cases.
	InformationAccuracy *float64 `json:"information_accuracy"`
	// CollaborationTimeDelta is mean collaboration time minus the baseline
	// time; the raw mean collaboration time when no baseline is available.
	CollaborationTimeDelta *float64 `json:"collaboration_time_delta"`
	// CollaborationContribution sums contribution ratio times weight.
	CollaborationContribution *float64 `json:"collaboration_contribution"`
	// CollaborationCaseCount counts collaboration cases.
	CollaborationCaseCount int `json:"collaboration_case_count"`
	// AverageCollaborationTime is the raw mean collaboration time.
	AverageCollaborationTime *float64 `json:"average_collaboration_time"`
	// BaselineSingleAgentTime is the mean baseline time that was used.
	BaselineSingleAgentTime *float64 `json:"baseline_single_agent_time"`
}

// CorrelationReport holds deviation measures between computed metrics,
// scaled to [0,1]. Smaller deviations indicate tighter consistency.
type CorrelationReport struct {
	// AccuracyTaskCompletionCorrelation is |accuracy - task completion rate|.
	AccuracyTaskCompletionCorrelation *float64 `json:"accuracy_task_completion_correlation,omitempty"`
	// F1Balance is |f1 - mean(accuracy, recall)|.
	F1Balance *float64 `json:"f1_balance,omitempty"`
	// TimeAccuracyTradeoff splits accuracy around the mean response time.
	TimeAccuracyTradeoff *TimeAccuracyTradeoff `json:"time_accuracy_tradeoff,omitempty"`
	// AdaptivityConsistency compares per-scene rates to overall accuracy.
	AdaptivityConsistency *AdaptivityConsistency `json:"adaptivity_consistency,omitempty"`
	// RobustnessImpact is |overall accuracy - abnormal-input accuracy|.
	RobustnessImpact *float64 `json:"robustness_impact,omitempty"`
}

// TimeAccuracyTradeoff splits case accuracy around the mean response time.
// Rates are percentages; Difference is the absolute gap between the sides.
type TimeAccuracyTradeoff struct {
	FastCasesAccuracy float64 `json:"fast_cases_accuracy"`
	SlowCasesAccuracy float64 `json:"slow_cases_accuracy"`
	Difference        float64 `json:"difference"`
}

// AdaptivityConsistency compares scene-group pass rates to overall accuracy,
// on the [0,1] scale.
type AdaptivityConsistency struct {
	TrainVsOverall    float64 `json:"train_vs_overall"`
	NonTrainVsOverall float64 `json:"non_train_vs_overall"`
}

// Engine computes metrics reports for one run configuration.
type Engine struct {
	config   Config
	features map[Feature]struct{}
}

// New creates an engine for the given config.
func New(config Config) *Engine {
	return &Engine{
		config:   config,
		features: featureSet(config.Features),
	}
}

// featureSet normalizes the requested features, dropping unknown names.
// An empty request enables everything.
func featureSet(requested []Feature) map[Feature]struct{} {
	features := make(map[Feature]struct{}, len(AllFeatures))
	if len(requested) == 0 {
		for _, f := range AllFeatures {
			features[f] = struct{}{}
		}
		return features
	}
	known := make(map[Feature]struct{}, len(AllFeatures))
	for _, f := range AllFeatures {
		known[f] = struct{}{}
	}
	for _, f := range requested {
		if _, ok := known[f]; ok {
			features[f] = struct{}{}
		}
	}
	return features
}

func (e *Engine) enabled(f Feature) bool {
	_, ok := e.features[f]
	return ok
}

// Compute derives the metrics report from the result log. The log is not
// mutated; calling Compute twice on the same inputs yields identical output.
func (e *Engine) Compute(results []*evalresult.CaseResult) *Report {
	report := &Report{}
	if len(e.features) == 0 {
		return report
	}
	if e.enabled(FeatureBasic) {
		report.Basic = e.computeBasic(results)
	}
	report.Generalization = e.computeGeneralization(results)
	if report.Basic != nil {
		report.CorrelationAnalysis = e.computeCorrelation(results, report)
	}
	return report
}
