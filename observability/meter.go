package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/locallm/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the global meter provider with an OTLP HTTP exporter.
// The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// InferenceMetrics holds the instruments recorded around provider calls.
type InferenceMetrics struct {
	callTotal    metric.Int64Counter
	callDuration metric.Float64Histogram
	callActive   metric.Int64UpDownCounter
	tokenTotal   metric.Int64Counter
	errorTotal   metric.Int64Counter
	modelLoads   metric.Int64Counter
}

// NewInferenceMetrics creates metric instruments on the given meter.
func NewInferenceMetrics(meter metric.Meter) (*InferenceMetrics, error) {
	callTotal, err := meter.Int64Counter("llm.calls.total",
		metric.WithDescription("Total number of provider calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.calls.total counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("llm.calls.duration",
		metric.WithDescription("Duration of provider calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.calls.duration histogram: %w", err)
	}

	callActive, err := meter.Int64UpDownCounter("llm.calls.active",
		metric.WithDescription("Number of provider calls in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.calls.active gauge: %w", err)
	}

	tokenTotal, err := meter.Int64Counter("llm.tokens.total",
		metric.WithDescription("Total number of streamed tokens delivered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.tokens.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("llm.errors.total",
		metric.WithDescription("Total failed provider calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.errors.total counter: %w", err)
	}

	modelLoads, err := meter.Int64Counter("llm.model_loads.total",
		metric.WithDescription("Total number of model load calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.model_loads.total counter: %w", err)
	}

	return &InferenceMetrics{
		callTotal:    callTotal,
		callDuration: callDuration,
		callActive:   callActive,
		tokenTotal:   tokenTotal,
		errorTotal:   errorTotal,
		modelLoads:   modelLoads,
	}, nil
}

// RecordCallStart increments the in-flight call count.
func (m *InferenceMetrics) RecordCallStart(ctx context.Context, backend string) {
	m.callActive.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordCallEnd decrements in-flight calls and records the completed call.
func (m *InferenceMetrics) RecordCallEnd(ctx context.Context, backend, operation, status string, duration time.Duration) {
	m.callActive.Add(ctx, -1, metric.WithAttributes(attribute.String("backend", backend)))
	m.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	))
	if operation == SpanLoadModel {
		m.modelLoads.Add(ctx, 1, metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("status", status),
		))
	}
}

// RecordTokens adds n delivered tokens.
func (m *InferenceMetrics) RecordTokens(ctx context.Context, backend string, n int) {
	if n <= 0 {
		return
	}
	m.tokenTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordError records a failed call by error code.
func (m *InferenceMetrics) RecordError(ctx context.Context, backend, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("code", code),
	))
}
