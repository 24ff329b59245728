package getloyaltysummary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/loyalty"
)

func createTestHandler(t *testing.T) (*Handler, *loyalty.Ledger, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	log := logger.NewTestLogger(t)
	ledger := loyalty.NewLedger(store, log)
	return NewHandler(&Config{Timeout: 5 * time.Second, RecentLimit: 2}, ledger, log), ledger, store
}

func TestHandler_Execute(t *testing.T) {
	handler, ledger, _ := createTestHandler(t)
	ctx := context.Background()

	for _, amount := range []int{100, 200, 4710} {
		_, err := ledger.AwardPoints(ctx, amount, "seed", nil, "u1")
		require.NoError(t, err)
	}
	_, err := ledger.AwardBadge(ctx, "wanderer", "u1")
	require.NoError(t, err)

	output, err := handler.Execute(ctx, &Input{UserID: "u1", BookingAmount: 1000})
	require.NoError(t, err)

	assert.Equal(t, 5110, output.TotalPoints)
	assert.Equal(t, "silver", output.Tier.ID)
	assert.False(t, output.NextTier.IsMaxTier)
	assert.Equal(t, 15000-5110, output.NextTier.PointsNeeded)
	require.Len(t, output.Badges, 1)
	assert.Equal(t, "wanderer", output.Badges[0].ID)
	assert.Len(t, output.History, 2)
	assert.NotEmpty(t, output.ReferralCode)

	require.NotNil(t, output.PointsPreview)
	assert.Equal(t, 1000, output.PointsPreview.BasePoints)
	assert.Equal(t, 70, output.PointsPreview.BonusPoints)
}

func TestHandler_Execute_NewUser(t *testing.T) {
	handler, _, _ := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{UserID: "fresh", Recent: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, output.TotalPoints)
	assert.Equal(t, "bronze", output.Tier.ID)
	assert.Empty(t, output.Badges)
	assert.Nil(t, output.PointsPreview)
}

func TestHandler_Execute_StorageDownDegrades(t *testing.T) {
	handler, _, store := createTestHandler(t)
	store.FailWith = errors.New("connection refused")

	output, err := handler.Execute(context.Background(), &Input{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", output.UserID)
	assert.Equal(t, 0, output.AvailablePoints)
}

func TestHandler_Execute_MissingUser(t *testing.T) {
	handler, _, _ := createTestHandler(t)
	_, err := handler.Execute(context.Background(), &Input{UserID: "  "})

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
}
