//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package config loads stored evaluation defaults and resolves them against
// per-request overrides.
//
// Resolution precedence, highest first: the request, the stored YAML config,
// the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-agent-eval/metrics"
)

// Config is the stored evaluation configuration.
type Config struct {
	// Weights drives the overall-score blend. Zero fields fall back to the
	// built-in defaults during resolution.
	Weights metrics.Weights `yaml:"weights" json:"weights"`
	// Metrics carries the run-level metric inputs: ground-truth total, scene
	// universe size and the collaboration/portability baselines.
	Metrics metrics.Config `yaml:"metrics" json:"metrics"`
	// CasesPath points at a JSON case file used when a request names the
	// file source without a path of its own.
	CasesPath string `yaml:"cases_path,omitempty" json:"cases_path,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Weights: metrics.DefaultWeights(),
	}
}

// Load reads the stored configuration from a YAML file. A missing file is
// not an error, the built-in defaults are returned; a malformed file is.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveWeights layers request weights over stored weights over defaults,
// field by field. A zero field means "not set" at every layer.
func ResolveWeights(stored *Config, request *metrics.Weights) metrics.Weights {
	resolved := metrics.DefaultWeights()
	if stored != nil {
		overlayWeights(&resolved, stored.Weights)
	}
	if request != nil {
		overlayWeights(&resolved, *request)
	}
	return resolved
}

// ResolveMetrics layers request metric inputs over the stored ones. Request
// fields win only when set.
func ResolveMetrics(stored *Config, request *metrics.Config) metrics.Config {
	var resolved metrics.Config
	if stored != nil {
		resolved = stored.Metrics
	}
	if request == nil {
		return resolved
	}
	if len(request.Features) > 0 {
		resolved.Features = request.Features
	}
	if request.GroundTruthTotal > 0 {
		resolved.GroundTruthTotal = request.GroundTruthTotal
	}
	if request.TotalSceneTypes > 0 {
		resolved.TotalSceneTypes = request.TotalSceneTypes
	}
	if request.BaselineSingleTaskTime != nil {
		resolved.BaselineSingleTaskTime = request.BaselineSingleTaskTime
	}
	if request.BaselineAdaptationCost != nil {
		resolved.BaselineAdaptationCost = request.BaselineAdaptationCost
	}
	return resolved
}

func overlayWeights(dst *metrics.Weights, src metrics.Weights) {
	if src.Base > 0 {
		dst.Base = src.Base
	}
	if src.Generalization > 0 {
		dst.Generalization = src.Generalization
	}
	if src.Adaptivity > 0 {
		dst.Adaptivity = src.Adaptivity
	}
	if src.Robustness > 0 {
		dst.Robustness = src.Robustness
	}
	if src.Portability > 0 {
		dst.Portability = src.Portability
	}
	if src.Collaboration > 0 {
		dst.Collaboration = src.Collaboration
	}
	if src.Functional > 0 {
		dst.Functional = src.Functional
	}
	if src.Safety > 0 {
		dst.Safety = src.Safety
	}
}
