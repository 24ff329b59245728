package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"travel-workers/internal/common/logger"
	"travel-workers/internal/events"
)

// Observability records job counts and durations through an OpenTelemetry
// meter exported on the Prometheus default registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	points        otelmetric.Int64Counter
	ledgerEvents  otelmetric.Int64Counter
}

// New registers the Prometheus exporter. Call it once per process. On
// failure it logs and returns a recorder that drops everything.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Error("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}
	o := NewWithReader(serviceName, exporter)
	otel.SetMeterProvider(o.meterProvider)
	return o
}

// NewWithReader builds the meter on an arbitrary reader.
func NewWithReader(serviceName string, reader metric.Reader) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	points, _ := meter.Int64Counter(
		"loyalty.points",
		otelmetric.WithDescription("Points moved through the ledger, by direction"),
	)
	ledgerEvents, _ := meter.Int64Counter(
		"loyalty.events",
		otelmetric.WithDescription("Ledger events published, by kind"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		points:        points,
		ledgerEvents:  ledgerEvents,
	}
}

// Observe records every ledger event published on bus until the returned
// function is called.
func (o *Observability) Observe(bus *events.Bus) func() {
	return bus.Subscribe(func(ctx context.Context, e events.Event) error {
		o.recordEvent(ctx, e)
		return nil
	})
}

func (o *Observability) recordEvent(ctx context.Context, e events.Event) {
	if o.ledgerEvents != nil {
		o.ledgerEvents.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", string(e.Kind))))
	}
	if o.points == nil {
		return
	}
	switch e.Kind {
	case events.PointsEarned:
		o.points.Add(ctx, int64(e.Points), otelmetric.WithAttributes(attribute.String("direction", "earned")))
	case events.PointsRedeemed:
		o.points.Add(ctx, int64(e.Points), otelmetric.WithAttributes(attribute.String("direction", "redeemed")))
	}
}

// RecordJob counts one job and its duration under taskType and status.
func (o *Observability) RecordJob(ctx context.Context, taskType, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	)
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, attrs)
	}
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
