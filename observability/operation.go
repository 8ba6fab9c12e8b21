package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/locallm/errors"
)

// Operation tracks one provider call across its span and metrics.
type Operation struct {
	Backend   string
	Name      string
	Model     string
	RequestID string
	StartTime time.Time
	Metrics   *InferenceMetrics

	span   trace.Span
	tokens int
}

// StartOperation opens a span for a provider call and counts it in flight.
// If metrics is nil, metric recording is skipped.
func StartOperation(ctx context.Context, metrics *InferenceMetrics, backend, name, model, requestID string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(
		attribute.String(AttrBackend, backend),
		attribute.String(AttrOperation, name),
	)
	if model != "" {
		span.SetAttributes(attribute.String(AttrModel, model))
	}
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
	if metrics != nil {
		metrics.RecordCallStart(ctx, backend)
	}
	return ctx, &Operation{
		Backend:   backend,
		Name:      name,
		Model:     model,
		RequestID: requestID,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
}

// AddTokens counts streamed tokens for the call.
func (op *Operation) AddTokens(n int) {
	op.tokens += n
}

// Tokens returns the tokens counted so far.
func (op *Operation) Tokens() int {
	return op.tokens
}

// End closes the span and records the call outcome.
func (op *Operation) End(ctx context.Context, err error) {
	duration := time.Since(op.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		code := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		} else if ctx.Err() != nil {
			code = "CANCELED"
		}
		SetSpanError(trace.ContextWithSpan(ctx, op.span), err)
		op.span.SetAttributes(
			attribute.String(AttrErrorCode, code),
			attribute.String(AttrErrorMessage, err.Error()),
		)
		if op.Metrics != nil {
			op.Metrics.RecordError(ctx, op.Backend, code)
		}
	}

	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if op.tokens > 0 {
		op.span.SetAttributes(attribute.Int(AttrTokens, op.tokens))
	}
	op.span.End()

	if op.Metrics != nil {
		op.Metrics.RecordTokens(ctx, op.Backend, op.tokens)
		op.Metrics.RecordCallEnd(ctx, op.Backend, op.Name, status, duration)
	}
}

// Duration returns the elapsed time since the call started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
