package tracer

import (
	"context"
	"log"

	"ai-appbuilder-be/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is reported as service.name and used as the service tracer name.
const ServiceName = "ai-appbuilder-backend"

// Tracer returns the tracer used for service level spans.
// It resolves the global provider on every call so a provider installed after
// startup (or in tests) is picked up.
func Tracer() trace.Tracer {
	return otel.Tracer(ServiceName)
}

// InitTracer installs an OTLP HTTP provider when tracing is enabled.
// The returned function flushes and stops the exporter.
func InitTracer(cfg config.TracingConfig, environment string) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		log.Println("OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)")
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("[WARN] Failed to create OTLP exporter: %v (tracing disabled)", err)
		return noop
	}

	tp := NewProvider(sdktrace.WithBatcher(exporter), cfg.SampleRatio, environment)
	otel.SetTracerProvider(tp)
	log.Printf("✅ OpenTelemetry tracer initialized (endpoint: %s, ratio: %.2f)", cfg.Endpoint, cfg.SampleRatio)

	return tp.Shutdown
}

// NewProvider builds a provider around the given span processor option.
// Child spans follow the remote parent's sampling decision.
func NewProvider(processor sdktrace.TracerProviderOption, ratio float64, environment string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.DeploymentEnvironmentKey.String(environment),
		)),
	)
}
