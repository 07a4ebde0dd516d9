package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"crypto-insight/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the tracer and resource name reported to the collector.
const ServiceName = "crypto-insight"

var newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// InitTracer installs the global tracer provider. With TRACING_ENABLED=false
// spans are recorded but never exported. Otherwise spans go to the OTLP gRPC
// endpoint, sampled at OTEL_TRACES_SAMPLER_ARG (0..1, default 1).
func InitTracer(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
	log := logger.WithComponent("tracing")

	if os.Getenv("TRACING_ENABLED") == "false" {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		log.Info("tracing export disabled")
		return tp, tp.Tracer(ServiceName), nil
	}

	endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	exporter, err := newTraceExporter(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(envOr("SERVICE_VERSION", "1.0.0")),
			semconv.DeploymentEnvironment(envOr("DEPLOY_ENV", "development")),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build trace resource: %w", err)
	}

	ratio := samplingRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG"))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.WithField("endpoint", endpoint).WithField("sample_ratio", ratio).Info("tracing enabled")
	return tp, tp.Tracer(ServiceName), nil
}

func samplingRatio(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 1
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		logger.WithComponent("tracing").Warnf("invalid OTEL_TRACES_SAMPLER_ARG=%q, sampling everything", v)
		return 1
	}
	return f
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
