// Package observability provides OpenTelemetry tracing and metrics for
// inference calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
//	    ServiceName: "locallm",
//	    Endpoint:    "localhost:4318",
//	})
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanInfer)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
//	    ServiceName: "locallm",
//	    Endpoint:    "localhost:4318",
//	})
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewInferenceMetrics(observability.Meter("locallm"))
//	ctx, op := observability.StartOperation(ctx, metrics, "ollama", observability.SpanInfer, "mistral")
//	defer op.End(ctx, err)
//
// Health:
//
//	h := observability.ProbeHealth(ctx, "ollama", provider.IsAvailable, 2*time.Second)
package observability
