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
	"sort"

	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
)

// Scene group names with dedicated adaptivity rates.
const (
	sceneTrain    = "train"
	sceneNonTrain = "non_train"
	sceneUnknown  = "unknown"
)

// buckets partitions the result log by the metadata tags each sub-dimension
// groups on. A case lands in every bucket whose tag it carries; concurrency
// buckets are an explicit set difference, so a case is never in both.
type buckets struct {
	sceneGroups map[string][]*evalresult.CaseResult

	abnormal          []*evalresult.CaseResult
	highConcurrency   []*evalresult.CaseResult
	normalConcurrency []*evalresult.CaseResult
	unstableEnv       []*evalresult.CaseResult
	deployment        []*evalresult.CaseResult
	collaboration     []*evalresult.CaseResult

	unknownAdaptTimes      []float64
	collaborationDurations []float64
	collaborationBaselines []float64
	contributionScores     []float64
}

func (e *Engine) bucketize(results []*evalresult.CaseResult) *buckets {
	b := &buckets{sceneGroups: make(map[string][]*evalresult.CaseResult)}
	for _, r := range results {
		if r == nil {
			continue
		}
		if scene, ok := metaString(r.Metadata, evalcase.MetaSceneType); ok && scene != "" {
			b.sceneGroups[scene] = append(b.sceneGroups[scene], r)
		}
		if metaBool(r.Metadata, evalcase.MetaIsUnknownScene) {
			if t, ok := metaFloat(r.Metadata, evalcase.MetaAdaptationTime); ok {
				b.unknownAdaptTimes = append(b.unknownAdaptTimes, t)
			} else {
				b.unknownAdaptTimes = append(b.unknownAdaptTimes, r.Duration)
			}
		}
		if metaBool(r.Metadata, evalcase.MetaAbnormalInput) {
			b.abnormal = append(b.abnormal, r)
		}
		if metaBool(r.Metadata, evalcase.MetaHighConcurrency) {
			b.highConcurrency = append(b.highConcurrency, r)
		} else {
			b.normalConcurrency = append(b.normalConcurrency, r)
		}
		if metaBool(r.Metadata, evalcase.MetaEnvironmentUnstable) {
			b.unstableEnv = append(b.unstableEnv, r)
		}
		if metaBool(r.Metadata, evalcase.MetaDeploymentAttempt) {
			b.deployment = append(b.deployment, r)
		}
		if metaBool(r.Metadata, evalcase.MetaCollaboration) {
			b.collaboration = append(b.collaboration, r)
			if d, ok := metaFloat(r.Metadata, evalcase.MetaCollaborationDuration); ok {
				b.collaborationDurations = append(b.collaborationDurations, d)
			} else {
				b.collaborationDurations = append(b.collaborationDurations, r.Duration)
			}
			if baseline, ok := metaFloat(r.Metadata, evalcase.MetaSingleAgentBaseline); ok {
				b.collaborationBaselines = append(b.collaborationBaselines, baseline)
			} else if e.config.BaselineSingleTaskTime != nil {
				b.collaborationBaselines = append(b.collaborationBaselines, *e.config.BaselineSingleTaskTime)
			}
			if ratio, ok := metaFloat(r.Metadata, evalcase.MetaContributionRatio); ok {
				weight := 1.0
				if w, ok := metaFloat(r.Metadata, evalcase.MetaContributionWeight); ok {
					weight = w
				}
				b.contributionScores = append(b.contributionScores, ratio*weight)
			}
		}
	}
	return b
}

// computeGeneralization derives the enabled generalization sub-reports.
// Returns nil when no sub-dimension is enabled.
func (e *Engine) computeGeneralization(results []*evalresult.CaseResult) *GeneralizationReport {
	wantAdaptivity := e.enabled(FeatureAdaptivity)
	wantRobustness := e.enabled(FeatureRobustness)
	wantPortability := e.enabled(FeaturePortability)
	wantCollaboration := e.enabled(FeatureCollaboration)
	if !wantAdaptivity && !wantRobustness && !wantPortability && !wantCollaboration {
		return nil
	}
	b := e.bucketize(results)
	report := &GeneralizationReport{}
	if wantAdaptivity {
		report.Adaptivity = e.computeAdaptivity(b)
	}
	if wantRobustness {
		report.Robustness = e.computeRobustness(b)
	}
	if wantPortability {
		report.Portability = e.computePortability(b)
	}
	if wantCollaboration {
		report.Collaboration = e.computeCollaboration(b)
	}
	return report
}

func (e *Engine) computeAdaptivity(b *buckets) *AdaptivityReport {
	trainRate := evalresult.PassRate(b.sceneGroups[sceneTrain])
	nonTrainRate := evalresult.PassRate(b.sceneGroups[sceneNonTrain])

	var deviation *float64
	if trainRate != nil && nonTrainRate != nil {
		deviation = ptr(roundTo(*nonTrainRate-*trainRate, 4))
	}

	coveredScenes := make([]string, 0, len(b.sceneGroups))
	for scene := range b.sceneGroups {
		coveredScenes = append(coveredScenes, scene)
	}
	sort.Strings(coveredScenes)

	var sceneCoverage *float64
	if e.config.TotalSceneTypes > 0 {
		sceneCoverage = percent(ptr(float64(len(coveredScenes)) / float64(e.config.TotalSceneTypes)))
	} else if len(coveredScenes) > 0 {
		// Without a configured universe the observed scenes are taken as the
		// full set, so coverage reads as complete.
		sceneCoverage = percent(ptr(1.0))
	}

	distribution := make(map[string]int, len(b.sceneGroups))
	for scene, group := range b.sceneGroups {
		distribution[scene] = len(group)
	}

	return &AdaptivityReport{
		TrainCompletionRate:           percent(trainRate),
		NonTrainCompletionRate:        percent(nonTrainRate),
		CrossSceneCompletionDeviation: deviation,
		SceneCoverage:                 sceneCoverage,
		CoveredSceneTypes:             coveredScenes,
		UnknownSceneAdaptationTime:    rounded(mean(b.unknownAdaptTimes), 3),
		UnknownSceneCompletionRate:    percent(evalresult.PassRate(b.sceneGroups[sceneUnknown])),
		SceneDistribution:             distribution,
	}
}

func (e *Engine) computeRobustness(b *buckets) *RobustnessReport {
	var abnormalErrorRate *float64
	if rate := evalresult.PassRate(b.abnormal); rate != nil {
		abnormalErrorRate = ptr(1 - *rate)
	}

	highRate := evalresult.PassRate(b.highConcurrency)
	normalRate := evalresult.PassRate(b.normalConcurrency)
	var stability *float64
	if highRate != nil && normalRate != nil && *normalRate != 0 {
		stability = ptr(roundTo(1-*highRate / *normalRate, 4))
	} else if highRate != nil {
		// No usable normal-concurrency baseline; report the raw
		// high-concurrency pass rate instead.
		stability = ptr(roundTo(*highRate, 4))
	}

	var envTolerance *float64
	if len(b.unstableEnv) > 0 {
		timeoutFlagged := false
		timeouts := 0
		for _, r := range b.unstableEnv {
			if metaHas(r.Metadata, evalcase.MetaTimeout) {
				timeoutFlagged = true
				if metaBool(r.Metadata, evalcase.MetaTimeout) {
					timeouts++
				}
			}
		}
		if timeoutFlagged {
			envTolerance = ptr(1 - float64(timeouts)/float64(len(b.unstableEnv)))
		} else {
			envTolerance = evalresult.PassRate(b.unstableEnv)
		}
	}

	return &RobustnessReport{
		AbnormalInputErrorRate:          percent(abnormalErrorRate),
		HighConcurrencyStability:        stability,
		EnvironmentFaultTolerance:       percent(envTolerance),
		AbnormalCaseCount:               len(b.abnormal),
		HighConcurrencyCaseCount:        len(b.highConcurrency),
		EnvironmentUnstableCaseCount:    len(b.unstableEnv),
		NormalConcurrencyCompletionRate: percent(normalRate),
		HighConcurrencyCompletionRate:   percent(highRate),
	}
}

func (e *Engine) computePortability(b *buckets) *PortabilityReport {
	if len(b.deployment) == 0 {
		return &PortabilityReport{DeploymentAttempts: 0}
	}

	successes := 0
	compatibilityIssues := 0
	var adaptationCosts, coverageValues []float64
	for _, r := range b.deployment {
		if metaBool(r.Metadata, evalcase.MetaDeploymentSuccess) {
			successes++
		}
		if issues, ok := metaFloat(r.Metadata, evalcase.MetaCompatibilityIssues); ok {
			compatibilityIssues += int(issues)
		}
		if cost, ok := metaFloat(r.Metadata, evalcase.MetaAdaptationCost); ok {
			adaptationCosts = append(adaptationCosts, cost)
		}
		if coverage, ok := metaFloat(r.Metadata, evalcase.MetaCompatibilityCoverage); ok {
			coverageValues = append(coverageValues, coverage)
		}
	}

	successRate := float64(successes) / float64(len(b.deployment))

	averageCost := mean(adaptationCosts)
	var costRatio *float64
	if averageCost != nil {
		if baseline := e.config.BaselineAdaptationCost; baseline != nil && *baseline > 0 {
			costRatio = ptr(roundTo(*averageCost / *baseline, 4))
		} else {
			// No baseline configured: report the raw mean cost.
			costRatio = ptr(roundTo(*averageCost, 4))
		}
	}

	return &PortabilityReport{
		CrossEnvironmentSuccessRate: percent(&successRate),
		CompatibilityIssueCount:     &compatibilityIssues,
		AdaptationCostRatio:         costRatio,
		CompatibilityCoverage:       percent(mean(coverageValues)),
		DeploymentAttempts:          len(b.deployment),
		AverageAdaptationCost:       rounded(averageCost, 2),
	}
}

func (e *Engine) computeCollaboration(b *buckets) *CollaborationReport {
	if len(b.collaboration) == 0 {
		return &CollaborationReport{CollaborationCaseCount: 0}
	}

	averageCollabTime := mean(b.collaborationDurations)
	baselineTime := mean(b.collaborationBaselines)
	var timeDelta *float64
	if averageCollabTime != nil {
		if baselineTime != nil {
			timeDelta = ptr(roundTo(*averageCollabTime-*baselineTime, 3))
		} else {
			// No baseline available: report the raw mean collaboration time.
			timeDelta = ptr(roundTo(*averageCollabTime, 3))
		}
	}

	var contribution *float64
	if len(b.contributionScores) > 0 {
		sum := 0.0
		for _, score := range b.contributionScores {
			sum += score
		}
		contribution = ptr(roundTo(sum, 4))
	}

	return &CollaborationReport{
		InformationAccuracy:       percent(evalresult.PassRate(b.collaboration)),
		CollaborationTimeDelta:    timeDelta,
		CollaborationContribution: contribution,
		CollaborationCaseCount:    len(b.collaboration),
		AverageCollaborationTime:  rounded(averageCollabTime, 3),
		BaselineSingleAgentTime:   rounded(baselineTime, 3),
	}
}
