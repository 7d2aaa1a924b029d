package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanResolverQuery = "resolver.query"
	SpanSourceQuery   = "resolver.source"
	SpanResolverList  = "resolver.list"
	SpanSelect        = "selector.select"
	SpanMatch         = "matcher.match"
	SpanActivate      = "activation.activate"
	SpanActivateOne   = "activation.artifact"
	SpanUse           = "acquire.use"
	SpanFind          = "acquire.find"
)

// Attribute keys.
const (
	AttrSessionID      = "session.id"
	AttrArtifactName   = "artifact.name"
	AttrArtifactVer    = "artifact.version"
	AttrSpecifier      = "artifact.specifier"
	AttrConstraint     = "artifact.constraint"
	AttrRegistry       = "registry.name"
	AttrRegistryCount  = "registry.count"
	AttrCandidateCount = "candidate.count"
	AttrSelectCount    = "select.count"
	AttrState          = "activation.state"
	AttrForce          = "activation.force"
)

// Event names.
const (
	EventSourceSkipped = "source.skipped"
	EventStateChanged  = "state.changed"
)

// Start opens an internal span named name with attrs.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return OrNoop(tracer).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Finish records err on span, sets its status and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
