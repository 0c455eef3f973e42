//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package service owns the evaluation run lifecycle: starting runs, polling
// their state and cancelling them.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-agent-eval/agent"
	"trpc.group/trpc-go/trpc-agent-eval/agent/provider"
	"trpc.group/trpc-go/trpc-agent-eval/config"
	"trpc.group/trpc-go/trpc-agent-eval/evalcase"
	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/metrics"
	"trpc.group/trpc-go/trpc-agent-eval/oracle"
	"trpc.group/trpc-go/trpc-agent-eval/runner"
	"trpc.group/trpc-go/trpc-agent-eval/task"
	"trpc.group/trpc-go/trpc-agent-eval/telemetry"
)

// DefaultPoolSize caps the number of concurrently executing runs.
const DefaultPoolSize = 8

// AgentFactory builds the agent under test from resolved settings.
type AgentFactory func(agent.Settings) (agent.Agent, error)

// StartRequest describes one evaluation run.
type StartRequest struct {
	// Agent reaches the system under test.
	Agent agent.Settings `json:"agent"`
	// Kinds filters the case list. Empty means both kinds.
	Kinds []evalcase.Kind `json:"evaluation_types,omitempty"`
	// Cases replaces the configured case source when non-empty.
	Cases []*evalcase.Case `json:"custom_test_cases,omitempty"`
	// MetricsEnabled turns the feature metrics report off when set to false.
	MetricsEnabled *bool `json:"metrics_enabled,omitempty"`
	// Metrics overrides the stored metric inputs.
	Metrics *metrics.Config `json:"feature_config,omitempty"`
	// Weights overrides the stored scoring weights.
	Weights *metrics.Weights `json:"weights,omitempty"`
}

// Service starts, tracks and cancels evaluation runs.
type Service struct {
	registry     *task.Registry
	pool         *ants.Pool
	stored       *config.Config
	source       evalcase.Source
	agentFactory AgentFactory
	judge        oracle.SimilarityJudge
}

// Option configures the service.
type Option func(*options)

type options struct {
	poolSize     int
	stored       *config.Config
	source       evalcase.Source
	agentFactory AgentFactory
	judge        oracle.SimilarityJudge
}

// WithPoolSize sets the maximum number of concurrent runs.
func WithPoolSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.poolSize = size
		}
	}
}

// WithStoredConfig sets the stored configuration layer.
func WithStoredConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.stored = cfg
	}
}

// WithCaseSource sets the case source used when a request carries no custom
// cases. Defaults to the built-in suite.
func WithCaseSource(source evalcase.Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithAgentFactory overrides how agents are built from settings. Defaults to
// the provider lookup table.
func WithAgentFactory(factory AgentFactory) Option {
	return func(o *options) {
		o.agentFactory = factory
	}
}

// WithSimilarityJudge sets the judge used for functional verdicts. Without
// one, functional cases fall back to containment.
func WithSimilarityJudge(judge oracle.SimilarityJudge) Option {
	return func(o *options) {
		o.judge = judge
	}
}

// New creates a service.
func New(opts ...Option) (*Service, error) {
	o := &options{
		poolSize:     DefaultPoolSize,
		stored:       config.Default(),
		source:       evalcase.BuiltinSource{},
		agentFactory: provider.New,
	}
	for _, opt := range opts {
		opt(o)
	}
	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	if o.judge == nil {
		log.Warnf("no similarity judge configured, functional verdicts fall back to containment matching")
	}
	return &Service{
		registry:     task.NewRegistry(),
		pool:         pool,
		stored:       o.stored,
		source:       o.source,
		agentFactory: o.agentFactory,
		judge:        o.judge,
	}, nil
}

// Start validates the request, registers a new run and schedules it on the
// pool. The run ID is returned immediately; the run itself executes out of
// band and is observed through Status.
func (s *Service) Start(ctx context.Context, req *StartRequest) (string, error) {
	settings := req.Agent.Normalize()
	if settings.APIKey == "" {
		return "", fmt.Errorf("missing api_key: set it explicitly or via the %s environment variable",
			agent.EnvKeyName(settings.Provider))
	}
	a, err := s.agentFactory(settings)
	if err != nil {
		return "", fmt.Errorf("failed to build agent: %w", err)
	}

	cases := req.Cases
	if len(cases) == 0 {
		cases, err = s.source.Load(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to load cases: %w", err)
		}
	}

	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = []evalcase.Kind{evalcase.KindFunctional, evalcase.KindSafety}
	}

	r := s.buildRunner(a, settings, req)

	state := task.NewState(uuid.NewString())
	s.registry.Add(state)
	telemetry.RecordRunStart(ctx, settings.Provider)

	if err := s.pool.Submit(func() {
		// The run outlives the start request; it is bounded by per-case
		// timeouts and the cancel channel, not by the caller's context.
		r.Run(context.Background(), state, cases, kinds)
	}); err != nil {
		s.registry.Remove(state.ID())
		return "", fmt.Errorf("failed to schedule run: %w", err)
	}
	log.Infof("evaluation run %s started: provider=%s model=%s", state.ID(), settings.Provider, settings.Model)
	return state.ID(), nil
}

// Status returns an isolated snapshot of the run.
func (s *Service) Status(id string) (*task.Snapshot, error) {
	state, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return state.Snapshot()
}

// Cancel requests cancellation of the run. Terminal runs report a no-op
// outcome instead of an error.
func (s *Service) Cancel(id string) (*task.CancelOutcome, error) {
	return s.registry.Cancel(id)
}

// Close releases the worker pool. Runs already executing finish.
func (s *Service) Close() error {
	s.pool.Release()
	return nil
}

func (s *Service) buildRunner(a agent.Agent, settings agent.Settings, req *StartRequest) *runner.Runner {
	opts := []runner.Option{
		runner.WithAttemptTimeout(settings.Timeout),
		runner.WithMaxRetries(settings.MaxRetries),
		runner.WithWeights(config.ResolveWeights(s.stored, req.Weights)),
	}

	oracleOpts := []oracle.Option{}
	if s.judge != nil {
		oracleOpts = append(oracleOpts, oracle.WithJudge(s.judge))
	}
	opts = append(opts, runner.WithOracle(oracle.New(oracleOpts...)))

	if req.MetricsEnabled == nil || *req.MetricsEnabled {
		engine := metrics.New(config.ResolveMetrics(s.stored, req.Metrics))
		opts = append(opts, runner.WithEngine(engine))
	}
	return runner.New(a, opts...)
}
