package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/detectors/aws/ecs"
	otelxray "go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// SetupTracer installs a global tracer provider exporting to the OTLP
// collector sidecar with X-Ray compatible trace IDs. The returned function
// flushes and stops the provider.
func SetupTracer(ctx context.Context, svcName string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithInsecure(), otlptracegrpc.WithDialOption(grpc.WithBlock()))
	if err != nil {
		return nil, fmt.Errorf("create otel trace exporter: %w", err)
	}

	r, err := resource.New(ctx,
		resource.WithDetectors(ecs.NewResourceDetector()),
		resource.WithAttributes(semconv.ServiceName(svcName)),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("detect otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(r),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithIDGenerator(otelxray.NewIDGenerator()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(otelxray.Propagator{})
	return tp.Shutdown, nil
}

// XRayTraceID formats the trace ID of span the way X-Ray prints it.
func XRayTraceID(span trace.Span) string {
	id := span.SpanContext().TraceID().String()
	if len(id) < 9 {
		return id
	}

	return fmt.Sprintf("1-%s-%s", id[:8], id[8:])
}
