package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"harvest/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

const meterName = "harvest"

// MetricsProvider owns the OpenTelemetry meter and the bot's instruments.
// Until Initialize runs, or when metrics are disabled, every instrument is a no-op.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	initialized   bool
	mu            sync.RWMutex

	commandsCounter        metric.Int64Counter
	commandFailures        metric.Int64Counter
	cacheLookupsCounter    metric.Int64Counter
	walletWritesCounter    metric.Int64Counter
	walletWritesBlocked    metric.Int64Counter
	eventsPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a provider backed by no-op instruments
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	mp := &MetricsProvider{config: cfg}
	// The noop meter never fails to create instruments
	_ = mp.createInstruments(noop.NewMeterProvider().Meter(meterName))
	return mp
}

// Initialize sets up the exporter selected by the configuration
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.createInstruments(mp.meterProvider.Meter(meterName)); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.WithFields(log.Fields{
		"exporter": mp.config.OTelExporterType,
		"interval": mp.config.OTelExportIntervalMillis,
	}).Info("Metrics provider initialized")
	return nil
}

func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	var err error

	if mp.commandsCounter, err = meter.Int64Counter(
		CommandsExecutedTotal,
		metric.WithDescription("Commands dispatched to a handler"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create commands counter: %w", err)
	}

	if mp.commandFailures, err = meter.Int64Counter(
		CommandsFailedTotal,
		metric.WithDescription("Commands whose handler returned a system error"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create command failures counter: %w", err)
	}

	if mp.cacheLookupsCounter, err = meter.Int64Counter(
		CacheLookupsTotal,
		metric.WithDescription("Cache lookups by keyspace and result"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create cache lookups counter: %w", err)
	}

	if mp.walletWritesCounter, err = meter.Int64Counter(
		WalletWritesTotal,
		metric.WithDescription("Write-behind wallet upserts by result"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create wallet writes counter: %w", err)
	}

	if mp.walletWritesBlocked, err = meter.Int64Counter(
		WalletWritesBlocked,
		metric.WithDescription("Wallet writes that waited on a full write-behind queue"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create blocked writes counter: %w", err)
	}

	if mp.eventsPublishedCounter, err = meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Events forwarded to NATS"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordCommand counts a dispatched command
func (mp *MetricsProvider) RecordCommand(ctx context.Context, command string, failed bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	attrs := metric.WithAttributes(attribute.String(LabelCommand, command))
	mp.commandsCounter.Add(ctx, 1, attrs)
	if failed {
		mp.commandFailures.Add(ctx, 1, attrs)
	}
}

// RecordCacheLookup counts a cache hit or miss
func (mp *MetricsProvider) RecordCacheLookup(ctx context.Context, keyspace string, hit bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	result := ResultMiss
	if hit {
		result = ResultHit
	}
	mp.cacheLookupsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelKeyspace, keyspace),
		attribute.String(LabelResult, result),
	))
}

// RecordPersist counts a finished write-behind job
func (mp *MetricsProvider) RecordPersist(ctx context.Context, succeeded bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	result := ResultFailure
	if succeeded {
		result = ResultSuccess
	}
	mp.walletWritesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelResult, result),
	))
}

// RecordPersistBlocked counts an enqueue that found its shard full
func (mp *MetricsProvider) RecordPersistBlocked(ctx context.Context) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	mp.walletWritesBlocked.Add(ctx, 1)
}

// RecordEventPublished counts an event forwarded to NATS
func (mp *MetricsProvider) RecordEventPublished(ctx context.Context, eventType string) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	mp.eventsPublishedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelType, eventType),
	))
}
