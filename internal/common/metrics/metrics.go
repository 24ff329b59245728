// internal/common/metrics/metrics.go
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/events"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	QueriesInterpreted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_interpreted_total",
			Help: "Search queries interpreted, by what was recognised",
		},
		[]string{"outcome"},
	)

	PointsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_awarded_total",
		Help: "Loyalty points awarded",
	})

	PointsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_redeemed_total",
		Help: "Loyalty points redeemed",
	})

	BadgesAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_badges_awarded_total",
			Help: "Badges awarded, by badge",
		},
		[]string{"badge"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_errors_total",
			Help: "Key-value store failures, by operation",
		},
		[]string{"op"},
	)

	TierUpgrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_tier_upgrades_total",
			Help: "Tier upgrades, by destination tier",
		},
		[]string{"tier"},
	)
)

// Query outcomes.
const (
	OutcomeBoth     = "category_and_location"
	OutcomeCategory = "category_only"
	OutcomeLocation = "location_only"
	OutcomeNone     = "none"
)

func QueryOutcome(hasCategory, hasLocation bool) string {
	switch {
	case hasCategory && hasLocation:
		return OutcomeBoth
	case hasCategory:
		return OutcomeCategory
	case hasLocation:
		return OutcomeLocation
	default:
		return OutcomeNone
	}
}

// SubscribeLedger counts ledger events. It returns the unsubscribe handle.
func SubscribeLedger(bus *events.Bus) func() {
	return bus.Subscribe(func(_ context.Context, e events.Event) error {
		switch e.Kind {
		case events.PointsEarned:
			PointsAwarded.Add(float64(e.Points))
		case events.PointsRedeemed:
			PointsRedeemed.Add(float64(e.Points))
		case events.BadgeEarned:
			BadgesAwarded.WithLabelValues(e.BadgeID).Inc()
		case events.TierUpgraded:
			TierUpgrades.WithLabelValues(e.ToTier).Inc()
		}
		return nil
	})
}

type countingStore struct {
	kvstore.Store
}

// CountErrors wraps s so that failed reads and writes increment StorageErrors.
func CountErrors(s kvstore.Store) kvstore.Store {
	return countingStore{Store: s}
}

func (c countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		StorageErrors.WithLabelValues("get").Inc()
	}
	return v, ok, err
}

func (c countingStore) Set(ctx context.Context, key string, value []byte) error {
	err := c.Store.Set(ctx, key, value)
	if err != nil {
		StorageErrors.WithLabelValues("set").Inc()
	}
	return err
}
