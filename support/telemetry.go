package support

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"google.golang.org/grpc/credentials"
)

const (
	DefaultOTLPEndpoint   = "api.honeycomb.io:443"
	DefaultJaegerEndpoint = "http://localhost:14268/api/traces"
)

// otlpSpans ships spans over gRPC. Honeycomb headers are sent when a team is
// configured.
func otlpSpans(ctx context.Context, config Config) (trace.SpanExporter, error) {
	if config.HoneycombTeam == "" {
		return nil, errors.New("HONEYCOMB_TEAM is required for the otlp exporter")
	}

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
		otlptracegrpc.WithHeaders(map[string]string{
			"x-honeycomb-team":    config.HoneycombTeam,
			"x-honeycomb-dataset": config.HoneycombSet,
		}),
		otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")),
	)

	return otlptrace.New(ctx, client)
}

func exporterFor(ctx context.Context, config Config) (trace.SpanExporter, error) {
	switch config.TraceExporter {
	case "console":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		return otlpSpans(ctx, config)
	case "jaeger":
		return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	default:
		return nil, nil
	}
}

// Telemetry installs the global tracer provider for the configured exporter.
// The returned function flushes and shuts it down.
func Telemetry(ctx context.Context, config Config) (func(), error) {
	exporter, err := exporterFor(ctx, config)
	if err != nil {
		return func() {}, errors.Wrap(err, "failed to create trace exporter")
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if exporter == nil {
		return func() {}, nil
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("wee-visits"),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		_ = provider.Shutdown(context.Background())
	}, nil
}
