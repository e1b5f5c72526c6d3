package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new internal span with the given name and attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// SpanFromContext returns the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError marks the span as errored.
func SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanOK marks the span as successful.
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Common attribute keys for Polaris spans.
var (
	AttrUserID       = attribute.Key("polaris.user_id")
	AttrWorkspaceID  = attribute.Key("polaris.workspace_id")
	AttrResourceID   = attribute.Key("polaris.resource.id")
	AttrResourceType = attribute.Key("polaris.resource.type")
	AttrAction       = attribute.Key("polaris.action")
	AttrAllowed      = attribute.Key("polaris.allowed")
	AttrReason       = attribute.Key("polaris.reason")
	AttrFromCache    = attribute.Key("polaris.from_cache")
)
