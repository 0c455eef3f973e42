//
// Tencent is pleased to support the open source community by making trpc-agent-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-eval is licensed under the Apache License Version 2.0.
//
//

// Package telemetry wires OpenTelemetry tracing and metrics for evaluation
// runs. Both providers export over OTLP HTTP; without explicit setup the
// no-op globals are used and instrumentation calls are free.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// ServiceName is the default service.name resource attribute.
	ServiceName = "trpc-agent-eval"
	// ServiceVersion is the default service.version resource attribute.
	ServiceVersion = "v0.1.0"

	instrumentationName = "trpc.group/trpc-go/trpc-agent-eval"
)

// Tracer is the tracer used for run and case spans. No-op until Init.
var Tracer trace.Tracer = noop.NewTracerProvider().Tracer(instrumentationName)

// Instruments populated by Init. Nil until then; use the Record helpers,
// which tolerate the uninitialized state.
var (
	runCounter       metric.Int64Counter
	caseCounter      metric.Int64Counter
	caseDuration     metric.Float64Histogram
	shutdownHandlers []func(context.Context) error
)

// Option configures telemetry setup.
type Option func(*options)

type options struct {
	endpoint       string
	serviceName    string
	serviceVersion string
}

// WithEndpoint sets the OTLP HTTP endpoint (host and port, no scheme).
// Falls back to OTEL_EXPORTER_OTLP_ENDPOINT, then localhost:4318.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.serviceName = name
	}
}

// WithServiceVersion overrides the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(o *options) {
		o.serviceVersion = version
	}
}

// Init sets up the OTLP HTTP trace and metric providers and the evaluation
// instruments, and installs them as the otel globals.
func Init(ctx context.Context, opts ...Option) error {
	o := &options{
		serviceName:    ServiceName,
		serviceVersion: ServiceVersion,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.endpoint == "" {
		o.endpoint = defaultEndpoint()
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(o.serviceName),
			semconv.ServiceVersion(o.serviceVersion),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(o.endpoint),
		otlptracehttp.WithInsecure())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	Tracer = tracerProvider.Tracer(instrumentationName)
	shutdownHandlers = append(shutdownHandlers, tracerProvider.Shutdown)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(o.endpoint),
		otlpmetrichttp.WithInsecure())
	if err != nil {
		return fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)
	shutdownHandlers = append(shutdownHandlers, meterProvider.Shutdown)

	meter := meterProvider.Meter(instrumentationName)
	if runCounter, err = meter.Int64Counter(
		"eval_run_total",
		metric.WithDescription("Total number of evaluation runs started"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create run counter: %w", err)
	}
	if caseCounter, err = meter.Int64Counter(
		"eval_case_total",
		metric.WithDescription("Total number of evaluated cases"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create case counter: %w", err)
	}
	if caseDuration, err = meter.Float64Histogram(
		"eval_case_duration",
		metric.WithDescription("Duration of a single evaluated case"),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("failed to create case duration histogram: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the installed providers.
func Shutdown(ctx context.Context) error {
	var firstErr error
	for _, handler := range shutdownHandlers {
		if err := handler(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	shutdownHandlers = nil
	return firstErr
}

// RecordRunStart counts a started run.
func RecordRunStart(ctx context.Context, provider string) {
	if runCounter == nil {
		return
	}
	runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordCase counts one evaluated case and records its duration.
func RecordCase(ctx context.Context, kind string, passed bool, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("passed", passed),
	)
	if caseCounter != nil {
		caseCounter.Add(ctx, 1, attrs)
	}
	if caseDuration != nil {
		caseDuration.Record(ctx, durationSeconds, attrs)
	}
}

func defaultEndpoint() string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "localhost:4318"
}
