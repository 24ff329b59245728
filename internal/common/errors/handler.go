// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler fails or throws jobs based on the StandardError retry table.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is what HandleJobError does with a failed job.
type Decision struct {
	Standard *StandardError
	BPMN     *BPMNError
	// Retry is true when the job is failed back to the engine rather than
	// thrown; Retries is then the count the engine is told to keep.
	Retry   bool
	Retries int
}

// Decide applies the retry table to err. Each failure consumes one of the
// job's remaining retries, capped by the table.
func Decide(job entities.Job, err error) Decision {
	stdErr := Normalize(err)
	d := Decision{Standard: stdErr, BPMN: ConvertToBPMNError(stdErr)}

	limit := GetRetryCount(stdErr.Code)
	if limit == 0 || job.Retries <= 0 {
		return d
	}
	d.Retry = true
	d.Retries = min(int(job.Retries)-1, limit)
	return d
}

// HandleJobError retries retryable failures and throws a BPMN error for the rest.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	d := Decide(job, err)
	h.logError(job, d)

	if d.Retry {
		h.failJobWithRetries(ctx, client, job, d.BPMN, d.Retries)
	} else {
		h.throwBPMNError(ctx, client, job, d.BPMN)
	}
	return d
}

// Normalize returns err as a StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(d.Standard.Code),
		"bpmnErrorCode":    d.BPMN.Code,
		"message":          d.BPMN.Message,
		"details":          d.Standard.Details,
		"retry":            d.Retry,
		"retries":          d.Retries,
		"errorCategory":    GetErrorCategory(d.Standard.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
