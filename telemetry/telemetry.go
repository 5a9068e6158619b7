// Package telemetry wires OpenTelemetry metrics and tracing for the order service.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const meterName = "github.com/syp1xd/food-ordering-app"

// Config holds telemetry configuration
type Config struct {
	ServiceName string `mapstructure:"service_name"`

	// OTLPEndpoint is the OTLP/HTTP collector URL. Empty disables trace export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// SetDefaults sets default telemetry configuration
func (c *Config) SetDefaults(v *viper.Viper, prefix string) {
	p := ""
	if prefix != "" {
		p = prefix + "."
	}
	v.SetDefault(p+"service_name", "foodorder")
	v.SetDefault(p+"otlp_endpoint", "")
}

// Provider owns the SDK meter and tracer providers.
type Provider struct {
	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider

	// Bus records event bus activity and is installed as the bus observer.
	Bus *BusMetrics
}

// Setup creates the meter provider and, when an endpoint is configured, an
// OTLP trace exporter registered as the global tracer provider.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	busMetrics, err := NewBusMetrics(mp.Meter(meterName))
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create bus metrics: %w", err)
	}

	p := &Provider{
		reader:        reader,
		meterProvider: mp,
		Bus:           busMetrics,
	}

	if cfg.OTLPEndpoint == "" {
		return p, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(p.tracerProvider)

	return p, nil
}

// Meter returns a meter from the SDK provider.
func (p *Provider) Meter(name string) metric.Meter {
	return p.meterProvider.Meter(name)
}

// Tracer returns a tracer from the configured provider, or the global one when export is off.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tracerProvider != nil {
		return p.tracerProvider.Tracer(name)
	}
	return otel.Tracer(name)
}

// Snapshot is a point-in-time view of the bus counters.
type Snapshot struct {
	Published         int64
	Delivered         int64
	Dropped           int64
	ActiveSubscribers int64
}

// Snapshot collects the current bus counter values.
func (p *Provider) Snapshot(ctx context.Context) (Snapshot, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return Snapshot{}, fmt.Errorf("failed to collect metrics: %w", err)
	}

	return Snapshot{
		Published:         sumInt64(&rm, metricPublished),
		Delivered:         sumInt64(&rm, metricDelivered),
		Dropped:           sumInt64(&rm, metricDropped),
		ActiveSubscribers: sumInt64(&rm, metricSubscribers),
	}, nil
}

// Shutdown flushes pending spans and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
	}
	return errors.Join(errs...)
}

func sumInt64(rm *metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
