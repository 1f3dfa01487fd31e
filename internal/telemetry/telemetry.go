// Package telemetry binds the observability hooks to OpenTelemetry.
//
// The pkg/observability hooks deliberately know nothing about any backend.
// This package provides the OTel implementation: trace spans for pipeline
// executions and HTTP requests, and metric instruments for parse, layout,
// render, cache, and store events. Call Register at startup to install the
// OTel-backed hooks process-wide:
//
//	if err := telemetry.Register(); err != nil {
//	    log.Warn("telemetry disabled", "error", err)
//	}
//
// The package uses the global OTel tracer and meter providers. Configure
// them (exporters, resources) before calling Register.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("flowscope")

// StartPipelineSpan starts a span covering one full pipeline execution.
func StartPipelineSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowscope.pipeline",
		trace.WithAttributes(
			attribute.String("workflow.name", name),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartStageSpan starts a span for a single pipeline stage such as
// "parse", "layout", or "render". The stage span should be a child of
// the pipeline span.
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowscope.stage."+stage,
		trace.WithAttributes(
			attribute.String("stage", stage),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
