package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry holds all telemetry instruments and providers.
type Telemetry struct {
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
	serviceName    string
	tracer         trace.Tracer
	meter          metric.Meter
	registry       *promclient.Registry

	// Fetch metrics
	fetchesTotal    metric.Int64Counter
	fetchDuration   metric.Float64Histogram
	fetchesActive   metric.Int64UpDownCounter
	fetchRetries    metric.Int64Counter
	bytesDownloaded metric.Int64Counter

	// Discovery metrics
	pagesFetched metric.Int64Counter
	logosFound   metric.Int64Counter

	// Journal metrics
	dbOperationsTotal   metric.Int64Counter
	dbOperationDuration metric.Float64Histogram
}

// Config holds telemetry configuration.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // host:port of an OTLP gRPC collector, empty to disable
}

// New creates a new telemetry instance. A disabled instance is still safe to
// use; every recording method becomes a no-op.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		return &Telemetry{}, nil
	}

	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(exporter)}

	var loggerProvider *sdklog.LoggerProvider

	if cfg.OTLPEndpoint != "" {
		otlpExporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}

		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(otlpExporter)))

		logExporter, err := otlploggrpc.New(ctx,
			otlploggrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlploggrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp log exporter: %w", err)
		}

		loggerProvider = sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)))
	}

	meterProvider := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(meterProvider)

	t := &Telemetry{
		meterProvider:  meterProvider,
		loggerProvider: loggerProvider,
		serviceName:    cfg.ServiceName,
		tracer:         otel.Tracer(cfg.ServiceName),
		meter:          meterProvider.Meter(cfg.ServiceName, metric.WithInstrumentationVersion(cfg.ServiceVersion)),
		registry:       registry,
	}

	if err := t.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := otelruntime.Start(otelruntime.WithMeterProvider(meterProvider)); err != nil {
		return nil, fmt.Errorf("failed to start runtime metrics: %w", err)
	}

	return t, nil
}

// Tracer returns the OpenTelemetry tracer.
func (t *Telemetry) Tracer() trace.Tracer {
	return t.tracer
}

// RecordFetch records the outcome of one asset variant fetch.
func (t *Telemetry) RecordFetch(ctx context.Context, variant, result string, duration time.Duration) {
	if t == nil || t.fetchesTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("result", result),
	)

	t.fetchesTotal.Add(ctx, 1, attrs)
	t.fetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRetry records a rate-limited attempt that will be retried.
func (t *Telemetry) RecordRetry(ctx context.Context, variant string) {
	if t == nil || t.fetchRetries == nil {
		return
	}

	t.fetchRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("variant", variant)))
}

// RecordBytes records bytes written to disk for a variant.
func (t *Telemetry) RecordBytes(ctx context.Context, variant string, n int64) {
	if t == nil || t.bytesDownloaded == nil {
		return
	}

	t.bytesDownloaded.Add(ctx, n, metric.WithAttributes(attribute.String("variant", variant)))
}

// IncrementActiveFetches increments the in-flight fetch gauge.
func (t *Telemetry) IncrementActiveFetches(ctx context.Context) {
	if t == nil || t.fetchesActive == nil {
		return
	}

	t.fetchesActive.Add(ctx, 1)
}

// DecrementActiveFetches decrements the in-flight fetch gauge.
func (t *Telemetry) DecrementActiveFetches(ctx context.Context) {
	if t == nil || t.fetchesActive == nil {
		return
	}

	t.fetchesActive.Add(ctx, -1)
}

// RecordPageFetch records one listing page request by status ("ok", "not_found", "error").
func (t *Telemetry) RecordPageFetch(ctx context.Context, status string) {
	if t == nil || t.pagesFetched == nil {
		return
	}

	t.pagesFetched.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordLogosFound records the number of logos discovered for a country.
func (t *Telemetry) RecordLogosFound(ctx context.Context, n int) {
	if t == nil || t.logosFound == nil {
		return
	}

	t.logosFound.Add(ctx, int64(n))
}

// RecordDBOperation records journal operation metrics.
func (t *Telemetry) RecordDBOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if t == nil || t.dbOperationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)

	t.dbOperationsTotal.Add(ctx, 1, attrs)
	t.dbOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// Handler returns the HTTP handler for the metrics endpoint.
func (t *Telemetry) Handler() http.Handler {
	if t == nil || t.registry == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// LogHandler returns a slog handler exporting records over OTLP, or nil when
// no collector is configured.
func (t *Telemetry) LogHandler() slog.Handler {
	if t == nil || t.loggerProvider == nil {
		return nil
	}

	return otelslog.NewHandler(t.serviceName, otelslog.WithLoggerProvider(t.loggerProvider))
}

// Shutdown flushes exporters and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.meterProvider == nil {
		return nil
	}

	err := t.meterProvider.Shutdown(ctx)

	if t.loggerProvider != nil {
		err = errors.Join(err, t.loggerProvider.Shutdown(ctx))
	}

	return err
}

// initializeMetrics creates all metric instruments.
func (t *Telemetry) initializeMetrics() error {
	if err := t.initializeFetchMetrics(); err != nil {
		return err
	}

	if err := t.initializeDiscoveryMetrics(); err != nil {
		return err
	}

	return t.initializeJournalMetrics()
}

func (t *Telemetry) initializeFetchMetrics() error {
	var err error

	t.fetchesTotal, err = t.meter.Int64Counter(
		"logo_fetches",
		metric.WithDescription("Total number of logo variant fetches by result"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create logo_fetches counter: %w", err)
	}

	t.fetchDuration, err = t.meter.Float64Histogram(
		"logo_fetch_duration_seconds",
		metric.WithDescription("Logo variant fetch duration in seconds, including backoff waits"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create logo_fetch_duration histogram: %w", err)
	}

	t.fetchesActive, err = t.meter.Int64UpDownCounter(
		"logo_fetches_active",
		metric.WithDescription("Number of assets currently being fetched"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create logo_fetches_active counter: %w", err)
	}

	t.fetchRetries, err = t.meter.Int64Counter(
		"logo_fetch_retries",
		metric.WithDescription("Number of fetch attempts retried after a 429 response"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create logo_fetch_retries counter: %w", err)
	}

	t.bytesDownloaded, err = t.meter.Int64Counter(
		"logo_downloaded_bytes",
		metric.WithDescription("Bytes written to disk for downloaded logos"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create logo_downloaded_bytes counter: %w", err)
	}

	return nil
}

func (t *Telemetry) initializeDiscoveryMetrics() error {
	var err error

	t.pagesFetched, err = t.meter.Int64Counter(
		"catalogue_pages_fetched",
		metric.WithDescription("Number of country listing pages requested by status"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalogue_pages_fetched counter: %w", err)
	}

	t.logosFound, err = t.meter.Int64Counter(
		"catalogue_logos_found",
		metric.WithDescription("Number of logos discovered across all countries"),
		metric.WithUnit("{logo}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalogue_logos_found counter: %w", err)
	}

	return nil
}

func (t *Telemetry) initializeJournalMetrics() error {
	var err error

	t.dbOperationsTotal, err = t.meter.Int64Counter(
		"journal_operations",
		metric.WithDescription("Total number of journal database operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create journal_operations counter: %w", err)
	}

	t.dbOperationDuration, err = t.meter.Float64Histogram(
		"journal_operation_duration_seconds",
		metric.WithDescription("Journal database operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create journal_operation_duration histogram: %w", err)
	}

	return nil
}
