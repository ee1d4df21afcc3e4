package tracer

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const exporterSetupTimeout = 10 * time.Second

// Options describes the service to the collector.
type Options struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP/gRPC collector address. Empty disables export.
	Endpoint string
	// SampleRatio applies to root spans; child spans follow their parent.
	SampleRatio float64
}

// InitTracer installs the W3C propagators and a global tracer provider.
// The provider always carries the service resource and sampler, but only
// exports when the collector is reachable.
func InitTracer(opts Options, appLogger *logger.Logger) *sdktrace.TracerProvider {
	log := appLogger.Named("Tracer")
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sampler(opts.SampleRatio)),
		sdktrace.WithResource(serviceResource(opts, log)),
	}

	if opts.Endpoint == "" {
		log.Info("Span export disabled: OTEL_EXPORTER_OTLP_ENDPOINT is not set")
	} else if exporter := newExporter(opts.Endpoint, log); exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)

	log.Info("Tracer provider installed",
		zap.String("service_name", opts.ServiceName),
		zap.String("service_version", opts.ServiceVersion),
		zap.String("environment", opts.Environment),
		zap.Float64("sample_ratio", opts.SampleRatio),
	)
	return tp
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// serviceResource is schemaless so it merges with resource.Default whatever
// semconv version the SDK was built against.
func serviceResource(opts Options, log *logger.Logger) *resource.Resource {
	own := resource.NewSchemaless(
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
		semconv.DeploymentEnvironment(opts.Environment),
	)
	res, err := resource.Merge(resource.Default(), own)
	if err != nil {
		log.Warn("Falling back to service-only trace resource", zap.Error(err))
		return own
	}
	return res
}

// newExporter dials the collector and returns nil when it cannot be reached.
func newExporter(endpoint string, log *logger.Logger) sdktrace.SpanExporter {
	ctx, cancel := context.WithTimeout(context.Background(), exporterSetupTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		log.Error("Failed to connect to OTLP gRPC collector", zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		log.Error("Failed to create OTLP trace exporter", zap.Error(err))
		_ = conn.Close()
		return nil
	}
	log.Info("Exporting spans", zap.String("endpoint", endpoint))
	return exporter
}
