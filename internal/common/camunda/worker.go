// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"travel-workers/internal/common/config"
	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/metrics"
)

// JobHandler reports the job to the engine itself. A non-nil error means the
// job was failed or thrown; it is only used for bookkeeping.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Recorder receives one call per handled job.
type Recorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

// Job statuses passed to Recorder.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// Instrument wraps handler so every job updates the worker metrics.
func Instrument(taskType string, handler JobHandler, rec Recorder, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		status := StatusCompleted
		if err != nil {
			status = StatusFailed
			bpmn := apperrors.ConvertToBPMNError(apperrors.Normalize(err))
			metrics.WorkerJobsFailed.WithLabelValues(taskType, bpmn.Code).Inc()
			log.Debug("handler reported failure", map[string]interface{}{
				"jobKey": job.Key,
				"error":  err,
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		if rec != nil {
			rec.RecordJob(context.Background(), taskType, status, elapsed)
		}
	}
}

// NewWorker opens a job worker for taskType.
func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	rec Recorder,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, rec, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout":       wcfg.Timeout,
	})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
