package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRowOwner      = "expr.owner"
	AttrRowName       = "expr.name"
	AttrRowCount      = "expr.rows"
	AttrContainerType = "container.type"
	AttrFactoryList   = "registry.list"
	AttrCommand       = "cli.command"
	AttrErrorMessage  = "error.message"
)

// Span name prefixes.
const (
	SpanPrefixRepo    = "repo."
	SpanPrefixCommand = "cli."
)

// Start opens an internal span. A nil tracer yields a non-recording span
// and leaves ctx unchanged.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End closes span, marking it failed when err is non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
