package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/factory-simulator/internal/logging"
)

// TracerName scopes spans emitted by this module.
const TracerName = "github.com/signalsfoundry/factory-simulator"

// Trace exporters understood by FACTORY_TRACING.
const (
	ExporterOff    = "off"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const (
	defaultServiceName  = "factory-simulator"
	defaultOTLPEndpoint = "localhost:4317"
	flushTimeout        = 5 * time.Second
)

// StartSpan opens a span for one simulation operation on the global tracer.
// Spans are no-ops until InitTracing installs an exporting provider.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// TracingConfig selects where simulation spans go.
type TracingConfig struct {
	Exporter    string
	Endpoint    string
	ServiceName string
	SampleRatio float64

	// Writer receives stdout spans; nil means os.Stdout.
	Writer io.Writer
}

// TracingConfigFromEnv reads FACTORY_TRACING (off, stdout or otlp),
// FACTORY_TRACING_ENDPOINT, FACTORY_TRACING_SERVICE and FACTORY_TRACING_SAMPLE.
// Unparseable or out-of-range sample ratios keep the default of 1.
func TracingConfigFromEnv() TracingConfig {
	cfg := TracingConfig{
		Exporter:    os.Getenv("FACTORY_TRACING"),
		Endpoint:    os.Getenv("FACTORY_TRACING_ENDPOINT"),
		ServiceName: os.Getenv("FACTORY_TRACING_SERVICE"),
	}
	if raw := os.Getenv("FACTORY_TRACING_SAMPLE"); raw != "" {
		if r, err := strconv.ParseFloat(raw, 64); err == nil && r >= 0 && r <= 1 {
			cfg.SampleRatio = r
		}
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields. A zero SampleRatio samples everything.
func (c *TracingConfig) ApplyDefaults() {
	c.Exporter = strings.ToLower(strings.TrimSpace(c.Exporter))
	if c.Exporter == "" {
		c.Exporter = ExporterOff
	}
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.Exporter == ExporterOTLP && c.Endpoint == "" {
		c.Endpoint = defaultOTLPEndpoint
	}
	if c.SampleRatio <= 0 {
		c.SampleRatio = 1
	}
}

// Tracing owns the process-wide tracer provider.
type Tracing struct {
	provider *sdktrace.TracerProvider
	log      logging.Logger
}

// InitTracing installs the global tracer provider and propagators for cfg.
// With the exporter off it installs a no-op provider and returns a Tracing
// whose Shutdown does nothing.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (*Tracing, error) {
	cfg.ApplyDefaults()
	t := &Tracing{log: logging.OrNoop(log)}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Exporter == ExporterOff {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return t, nil
	}

	exp, err := newSpanExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceNamespace("factory"),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(t.provider)

	t.log.Info(ctx, "tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service", cfg.ServiceName),
		logging.Any("sample_ratio", cfg.SampleRatio),
	)
	return t, nil
}

func newSpanExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	case ExporterOTLP:
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	}
	return nil, fmt.Errorf("unsupported trace exporter %q", cfg.Exporter)
}

// Enabled reports whether spans are exported.
func (t *Tracing) Enabled() bool { return t != nil && t.provider != nil }

// Shutdown flushes pending spans, giving up after a few seconds. Failures are
// logged.
func (t *Tracing) Shutdown(ctx context.Context) {
	if !t.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := t.provider.Shutdown(ctx); err != nil {
		t.log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
