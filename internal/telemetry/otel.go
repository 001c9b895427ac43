package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "habito-server"

// Config configures the OTLP exporter.
type Config struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Version  string
}

// OTel records into OpenTelemetry instruments.
type OTel struct {
	shutdown func(context.Context) error

	checks   metric.Int64Counter
	progress metric.Float64Histogram
	habits   metric.Int64Counter
}

// NewExporter starts a periodic OTLP/gRPC exporter and registers it as the
// global meter provider.
func NewExporter(ctx context.Context, cfg Config) (*OTel, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, errors.New("telemetry: exporter disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts,
			otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			otlpmetricgrpc.WithInsecure(),
		)
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	rec, err := newOTel(provider.Meter(serviceName))
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	rec.shutdown = provider.Shutdown
	return rec, nil
}

func newOTel(meter metric.Meter) (*OTel, error) {
	checks, err := meter.Int64Counter(
		"habito_checks_toggled_total",
		metric.WithDescription("Habit checks set or cleared"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating checks counter: %w", err)
	}

	progress, err := meter.Float64Histogram(
		"habito_progress_duration_seconds",
		metric.WithDescription("Time to compute a progress view"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating progress histogram: %w", err)
	}

	habits, err := meter.Int64Counter(
		"habito_habit_changes_total",
		metric.WithDescription("Habit create, update and delete operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating habits counter: %w", err)
	}

	return &OTel{checks: checks, progress: progress, habits: habits}, nil
}

func (o *OTel) CheckToggled(ctx context.Context, completed bool) {
	o.checks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("completed", completed)))
}

func (o *OTel) ProgressComputed(ctx context.Context, view string, took time.Duration) {
	o.progress.Record(ctx, took.Seconds(), metric.WithAttributes(attribute.String("view", view)))
}

func (o *OTel) HabitsChanged(ctx context.Context, op string) {
	o.habits.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// Shutdown flushes pending metrics.
func (o *OTel) Shutdown(ctx context.Context) error {
	if o.shutdown == nil {
		return nil
	}
	return o.shutdown(ctx)
}
