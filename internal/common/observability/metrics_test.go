package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"travel-workers/internal/common/logger"
	"travel-workers/internal/events"
)

func TestRecordJob(t *testing.T) {
	reader := metric.NewManualReader()
	o := NewWithReader("travel-workers-test", reader)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordJob(ctx, "reward-booking", "completed", 12*time.Millisecond)
	o.RecordJob(ctx, "reward-booking", "failed", 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
		if m.Name == "jobs.processed" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			assert.Len(t, sum.DataPoints, 2)
		}
	}
	assert.True(t, names["jobs.processed"])
	assert.True(t, names["jobs.duration"])
}

func TestZeroValueIsSafe(t *testing.T) {
	var o Observability
	assert.NotPanics(t, func() {
		o.RecordJob(context.Background(), "x", "completed", time.Second)
		o.Shutdown()
	})
}

func TestObserveLedger(t *testing.T) {
	reader := metric.NewManualReader()
	o := NewWithReader("travel-workers-test", reader)
	defer o.Shutdown()

	bus := events.NewBus(logger.NewTestLogger(t))
	stop := o.Observe(bus)

	ctx := context.Background()
	bus.Publish(ctx, events.Event{Kind: events.PointsEarned, UserID: "u1", Points: 150})
	bus.Publish(ctx, events.Event{Kind: events.PointsEarned, UserID: "u1", Points: 50})
	bus.Publish(ctx, events.Event{Kind: events.PointsRedeemed, UserID: "u1", Points: 80})
	stop()
	bus.Publish(ctx, events.Event{Kind: events.PointsEarned, UserID: "u1", Points: 1000})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byDirection := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "loyalty.points" {
			continue
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		for _, dp := range sum.DataPoints {
			dir, _ := dp.Attributes.Value("direction")
			byDirection[dir.AsString()] = dp.Value
		}
	}
	assert.Equal(t, map[string]int64{"earned": 200, "redeemed": 80}, byDirection)
}
