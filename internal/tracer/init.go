package tracer

import (
	"context"

	"sado-notes-be/internal/config"
	"sado-notes-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const module = "TRACER"

// InitTracer installs an OTLP/HTTP tracer provider (Jaeger accepts OTLP on
// 4318) and returns its shutdown func. Tracing is off unless OTEL_ENABLED=true;
// the returned func is then a no-op.
func InitTracer(cfg config.TelemetryConfig, log logger.ILogger) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		log.Info(module, "OpenTelemetry tracing is disabled", nil)
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Warn(module, "Failed to create OTLP exporter, tracing disabled", map[string]interface{}{
			"endpoint": cfg.Endpoint,
			"error":    err.Error(),
		})
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)

	log.Info(module, "OpenTelemetry tracer initialized", map[string]interface{}{"endpoint": cfg.Endpoint})
	return tp.Shutdown
}
