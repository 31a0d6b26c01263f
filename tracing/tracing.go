// Package tracing sets up OpenTelemetry tracing for the tour guide server.
// Spans are exported over OTLP/HTTP with a batch processor; when tracing is
// disabled the provider hands out no-op tracers.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Config holds the configuration for distributed tracing.
type Config struct {
	ServiceName string
	Enabled     bool
	Environment string

	// OTLPEndpoint is host:port of the OTLP/HTTP collector.
	OTLPEndpoint string

	// SamplingRate is the fraction of traces kept, between 0 and 1.
	SamplingRate float64

	// Insecure disables TLS towards the collector.
	Insecure bool
}

// ErrServiceNameRequired is returned when tracing is enabled without a name.
var ErrServiceNameRequired = errors.New("tracing: service name is required")

// Provider owns the tracer provider and its exporter.
type Provider struct {
	tp     *sdktrace.TracerProvider
	config Config
}

// NewProvider builds and registers the global tracer provider. The exporter
// is only created when cfg.Enabled is set.
func NewProvider(cfg Config, log *zap.Logger) (*Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Enabled {
		log.Info("tracing disabled")
		return &Provider{config: cfg}, nil
	}

	if cfg.ServiceName == "" {
		return nil, ErrServiceNameRequired
	}
	if cfg.SamplingRate < 0 || cfg.SamplingRate > 1 {
		return nil, fmt.Errorf("tracing: sampling rate must be between 0 and 1, got %f", cfg.SamplingRate)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("environment", cfg.Environment),
	)

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing: create exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(Sampler(cfg.SamplingRate))),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("endpoint", cfg.OTLPEndpoint),
		zap.Float64("sampling_rate", cfg.SamplingRate),
	)

	return &Provider{tp: tp, config: cfg}, nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return otlptracehttp.New(ctx, opts...)
}

// Sampler maps a sampling rate onto an sdk sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns a named tracer. A disabled provider returns a no-op tracer.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tp == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tp.Tracer(name)
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.tp != nil
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing: shutdown: %w", err)
	}
	return nil
}
