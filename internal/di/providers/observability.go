package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/config"
	"github.com/habitoapp/habito-server/internal/events"
	"github.com/habitoapp/habito-server/internal/logger"
	"github.com/habitoapp/habito-server/internal/metrics"
	"github.com/habitoapp/habito-server/internal/telemetry"
	"github.com/habitoapp/habito-server/internal/version"
)

// PublisherHandle wraps the event publisher with shutdown capability.
type PublisherHandle struct {
	events.Publisher
}

// Shutdown implements do.Shutdownable.
func (h *PublisherHandle) Shutdown() error {
	return h.Close()
}

// ProvidePublisher publishes to Kafka when brokers are configured and
// drops events otherwise.
func ProvidePublisher(i do.Injector) (*PublisherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if len(cfg.Events.Brokers) == 0 {
		log.Info("Event publishing disabled (no KAFKA_BROKERS)")
		return &PublisherHandle{Publisher: events.NewNoop()}, nil
	}

	k, err := events.NewKafka(events.KafkaConfig{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
	}, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("Publishing events to Kafka", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	return &PublisherHandle{Publisher: k}, nil
}

// RecorderHandle wraps the telemetry recorder with shutdown capability.
type RecorderHandle struct {
	telemetry.Recorder
}

// Shutdown flushes pending metrics.
func (h *RecorderHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Recorder.Shutdown(ctx)
}

// ProvideRecorder exports domain metrics over OTLP when enabled. A failing
// exporter degrades to a no-op rather than blocking startup.
func ProvideRecorder(i do.Injector) (*RecorderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Telemetry.Enabled {
		return &RecorderHandle{Recorder: telemetry.NewNoop()}, nil
	}

	exporter, err := telemetry.NewExporter(context.Background(), telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Insecure: cfg.Telemetry.Insecure,
		Version:  version.Version,
	})
	if err != nil {
		log.Warn("OpenTelemetry exporter unavailable, metrics disabled", "error", err)
		return &RecorderHandle{Recorder: telemetry.NewNoop()}, nil
	}
	log.Info("OpenTelemetry metrics enabled", "endpoint", cfg.Telemetry.Endpoint)
	return &RecorderHandle{Recorder: exporter}, nil
}

// ProvideHTTPMetrics provides the Prometheus HTTP metrics, or nil when
// /metrics is disabled.
func ProvideHTTPMetrics(i do.Injector) (*metrics.HTTP, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Server.MetricsEnabled {
		return nil, nil
	}
	return metrics.NewHTTP(), nil
}
