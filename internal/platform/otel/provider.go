// Package otel configures trace and metric export for allocation commands.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/config"
)

// Settings controls trace and metric export.
type Settings struct {
	Enabled  bool   `env:"BLANKWARS_OTEL_ENABLED" envDefault:"true"`
	Endpoint string `env:"BLANKWARS_OTEL_ENDPOINT"`
	// SampleRatio applies to root spans; child spans follow their parent.
	SampleRatio float64 `env:"BLANKWARS_OTEL_SAMPLE_RATIO" envDefault:"1"`
	// MetricInterval is how often gate, decision and spend counters are pushed.
	MetricInterval time.Duration `env:"BLANKWARS_OTEL_METRIC_INTERVAL" envDefault:"30s"`
}

// Active reports whether spans and metrics should be exported.
func (s Settings) Active() bool {
	return s.Enabled && s.Endpoint != ""
}

func (s Settings) sampler() sdktrace.Sampler {
	switch {
	case s.SampleRatio >= 1:
		return sdktrace.AlwaysSample()
	case s.SampleRatio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))
	}
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.ParseEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("otel settings: %w", err)
	}
	return s, nil
}

// Setup initialises tracing for the given service from environment settings.
//
// Export is opt-in: with no BLANKWARS_OTEL_ENDPOINT, or with
// BLANKWARS_OTEL_ENABLED=false, no global providers are registered and the
// allocation spans and instruments stay no-ops. The returned shutdown
// function flushes pending spans and metrics and should be deferred by the
// caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	settings, err := LoadSettings()
	if err != nil {
		return noopShutdown, err
	}
	return SetupWith(ctx, serviceName, settings)
}

// SetupWith is Setup with explicit settings.
func SetupWith(ctx context.Context, serviceName string, settings Settings) (func(context.Context) error, error) {
	if !settings.Active() {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(signalURL(settings.Endpoint, "/v1/traces")))
	if err != nil {
		return noopShutdown, fmt.Errorf("otlp trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, fmt.Errorf("otel resource: %w", err)
	}

	mp, err := newMeterProvider(ctx, settings, res)
	if err != nil {
		return noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(settings.sampler()),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func newMeterProvider(ctx context.Context, settings Settings, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(signalURL(settings.Endpoint, "/v1/metrics")))
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	var readerOpts []sdkmetric.PeriodicReaderOption
	if settings.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(settings.MetricInterval))
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	), nil
}

// signalURL appends the OTLP signal path to a collector base URL. An
// endpoint that already names a /v1/ signal path is used as is.
func signalURL(endpoint, signal string) string {
	u, err := url.Parse(endpoint)
	if err != nil || strings.Contains(u.Path, "/v1/") {
		return endpoint
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + signal
	return u.String()
}

func noopShutdown(context.Context) error { return nil }
