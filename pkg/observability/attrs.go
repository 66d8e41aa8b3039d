package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine-specific semantic convention attributes.
var (
	AttrSubjectID = attribute.Key("sentinel.subject.id")
	AttrSeverity  = attribute.Key("sentinel.risk.severity")

	AttrActionID  = attribute.Key("sentinel.action.id")
	AttrOutcome   = attribute.Key("sentinel.compliance.outcome")
	AttrCompliant = attribute.Key("sentinel.compliance.compliant")

	AttrCorpusVersion = attribute.Key("sentinel.corpus.version")
	AttrCorpusRules   = attribute.Key("sentinel.corpus.rules")
)

// ScoringOperation builds the standard attributes for one risk assessment.
func ScoringOperation(subjectID, severity string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrSubjectID.String(subjectID),
		AttrSeverity.String(severity),
	}
}

// ComplianceOperation builds the standard attributes for one compliance
// evaluation.
func ComplianceOperation(actionID, outcome string, compliant bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrActionID.String(actionID),
		AttrOutcome.String(outcome),
		AttrCompliant.Bool(compliant),
	}
}

// CorpusOperation builds the standard attributes for a corpus rebuild or
// snapshot swap.
func CorpusOperation(version string, ruleCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrCorpusVersion.String(version),
		AttrCorpusRules.Int(ruleCount),
	}
}

// SpanFromContext returns the active span, or a no-op span when none.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent attaches an event to the active span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus marks the active span failed or ok from err.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
