//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package evalcase defines evaluation cases and their sources.
package evalcase

// Kind classifies how a case verdict is decided.
type Kind string

const (
	// KindFunctional marks a case judged by semantic similarity between expected and actual output.
	KindFunctional Kind = "functional"
	// KindSafety marks a case judged by substring containment of an expected marker phrase.
	KindSafety Kind = "safety"
)

// Metadata keys consumed by the metrics engine. Cases may carry any subset of
// them; absent keys simply exclude the case from the corresponding grouping.
const (
	// MetaSceneType groups cases by scene for adaptivity metrics (e.g. "train", "non_train", "unknown").
	MetaSceneType = "scene_type"
	// MetaIsUnknownScene flags a case as exercising an unknown scene.
	MetaIsUnknownScene = "is_unknown_scene"
	// MetaAdaptationTime is the time spent adapting to an unknown scene, in seconds.
	MetaAdaptationTime = "adaptation_time"
	// MetaAbnormalInput flags a case as carrying malformed or noisy input.
	MetaAbnormalInput = "abnormal_input"
	// MetaHighConcurrency flags a case as executed under peak concurrency.
	MetaHighConcurrency = "high_concurrency"
	// MetaEnvironmentUnstable flags a case as executed under environment faults.
	MetaEnvironmentUnstable = "environment_unstable"
	// MetaTimeout flags a case that timed out under an unstable environment.
	MetaTimeout = "timeout"
	// MetaDeploymentAttempt flags a case as a cross-environment deployment attempt.
	MetaDeploymentAttempt = "deployment_attempt"
	// MetaDeploymentSuccess records whether a deployment attempt succeeded on the first try.
	MetaDeploymentSuccess = "deployment_success"
	// MetaCompatibilityIssues counts compatibility errors observed after migration.
	MetaCompatibilityIssues = "compatibility_issues"
	// MetaAdaptationCost is the migration cost of a deployment attempt.
	MetaAdaptationCost = "adaptation_cost"
	// MetaCompatibilityCoverage is the fraction of target-environment configs covered.
	MetaCompatibilityCoverage = "compatibility_coverage"
	// MetaCollaboration flags a case as a multi-agent collaboration task.
	MetaCollaboration = "collaboration"
	// MetaCollaborationDuration is the total collaboration time, in seconds.
	MetaCollaborationDuration = "collaboration_duration"
	// MetaSingleAgentBaseline is the single-agent baseline time for the same task.
	MetaSingleAgentBaseline = "single_agent_baseline"
	// MetaContributionRatio is the share of subtasks completed by the agent.
	MetaContributionRatio = "contribution_ratio"
	// MetaContributionWeight is the importance weight of the agent's subtasks.
	MetaContributionWeight = "contribution_weight"
)

// Case is a single evaluation unit pairing an input with an expected output.
// Cases are immutable once loaded.
type Case struct {
	// Kind decides the verdict policy for this case.
	Kind Kind `json:"type"`
	// Input is the prompt sent to the agent.
	Input string `json:"input"`
	// Expected is the reference output or marker phrase.
	Expected string `json:"expected"`
	// Category is a free-form label used only for reporting.
	Category string `json:"category,omitempty"`
	// Metadata carries optional scene/concurrency/environment/collaboration tags.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Filter keeps only cases whose kind is in the given set, preserving source order.
// An empty kind set keeps nothing.
func Filter(cases []*Case, kinds []Kind) []*Case {
	keep := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		keep[k] = struct{}{}
	}
	filtered := make([]*Case, 0, len(cases))
	for _, c := range cases {
		if c == nil {
			continue
		}
		if _, ok := keep[c.Kind]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
