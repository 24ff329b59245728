package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/events"
)

func TestSubscribeLedger(t *testing.T) {
	bus := events.NewBus(logger.NewTestLogger(t))
	unsubscribe := SubscribeLedger(bus)
	defer unsubscribe()

	awarded := testutil.ToFloat64(PointsAwarded)
	redeemed := testutil.ToFloat64(PointsRedeemed)
	silver := testutil.ToFloat64(TierUpgrades.WithLabelValues("silver"))

	ctx := context.Background()
	bus.Publish(ctx, events.Event{Kind: events.PointsEarned, Points: 441})
	bus.Publish(ctx, events.Event{Kind: events.PointsRedeemed, Points: 100})
	bus.Publish(ctx, events.Event{Kind: events.TierUpgraded, FromTier: "bronze", ToTier: "silver"})
	bus.Publish(ctx, events.Event{Kind: events.BadgeEarned, BadgeID: "wanderer"})

	assert.Equal(t, awarded+441, testutil.ToFloat64(PointsAwarded))
	assert.Equal(t, redeemed+100, testutil.ToFloat64(PointsRedeemed))
	assert.Equal(t, silver+1, testutil.ToFloat64(TierUpgrades.WithLabelValues("silver")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(BadgesAwarded.WithLabelValues("wanderer")), 1.0)
}

func TestQueryOutcome(t *testing.T) {
	assert.Equal(t, OutcomeBoth, QueryOutcome(true, true))
	assert.Equal(t, OutcomeCategory, QueryOutcome(true, false))
	assert.Equal(t, OutcomeLocation, QueryOutcome(false, true))
	assert.Equal(t, OutcomeNone, QueryOutcome(false, false))
}

func TestCountErrors(t *testing.T) {
	mem := kvstore.NewMemoryStore()
	store := CountErrors(mem)
	ctx := context.Background()

	before := testutil.ToFloat64(StorageErrors.WithLabelValues("set"))
	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.Equal(t, before, testutil.ToFloat64(StorageErrors.WithLabelValues("set")))

	mem.FailWith = errors.New("down")
	assert.Error(t, store.Set(ctx, "k", []byte("v")))
	_, _, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(StorageErrors.WithLabelValues("set")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(StorageErrors.WithLabelValues("get")), 1.0)
}
