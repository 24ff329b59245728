package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/metrics"
)

func fastRetry(max int) *RetryConfig {
	return &RetryConfig{MaxRetries: max, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "transient errors are retried",
			failures:  []error{errors.New("connection refused"), errors.New("rpc error: Unavailable")},
			wantCalls: 3,
		},
		{
			name:      "permanent error stops immediately",
			failures:  []error{errors.New("permission denied")},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name: "gives up after max retries",
			failures: []error{
				errors.New("timeout"), errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
			},
			wantCalls: 3,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fastRetry(2), logger.NewTestLogger(t), "test", func(context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	err := Retry(ctx, rc, logger.NewNoOpLogger(), "test", func(context.Context) error {
		return errors.New("connection reset")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, rc.Backoff(0))
	assert.Equal(t, 2*time.Second, rc.Backoff(1))
	assert.Equal(t, 4*time.Second, rc.Backoff(2))
	assert.Equal(t, 5*time.Second, rc.Backoff(3))
	assert.Equal(t, 5*time.Second, rc.Backoff(64))
}

type handlerFunc func(worker.JobClient, entities.Job) error

func (f handlerFunc) Handle(c worker.JobClient, j entities.Job) error { return f(c, j) }

type recorded struct {
	taskType, status string
}

type fakeRecorder struct{ calls []recorded }

func (r *fakeRecorder) RecordJob(_ context.Context, taskType, status string, _ time.Duration) {
	r.calls = append(r.calls, recorded{taskType, status})
}

func TestInstrument(t *testing.T) {
	const taskType = "instrument-test"
	rec := &fakeRecorder{}
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}}

	ok := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error { return nil }), rec, logger.NewTestLogger(t))
	failing := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error {
		return apperrors.NewBusinessRuleError(apperrors.ErrCodeInsufficientPoints, "Insufficient points")
	}), rec, logger.NewTestLogger(t))

	ok(nil, job)
	failing(nil, job)

	assert.Equal(t, []recorded{{taskType, StatusCompleted}, {taskType, StatusFailed}}, rec.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, "LOYALTY_RULE_ERROR")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}
