// internal/workers/loyalty/manage-referral/handler.go
package managereferral

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/loyalty"
)

const (
	TaskType = "manage-referral"
)

type Handler struct {
	config *Config
	ledger *loyalty.Ledger
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, ledger *loyalty.Ledger, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		ledger: ledger,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
		h.errors.HandleJobError(context.Background(), client, job, stdErr)
		return stdErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return err
	}

	return h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		res *loyalty.ReferralResult
		err error
	)
	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case ActionAdd:
		res, err = h.ledger.AddReferral(ctx, input.UserID, input.Referee)
	case ActionConvert:
		res, err = h.ledger.ConvertReferral(ctx, input.UserID, input.Referee)
	default:
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown action %q", input.Action))
	}

	if err != nil && !loyalty.IsBusinessRule(err) {
		return nil, loyalty.ToStandardError(err)
	}
	out := &Output{ReferralResult: *res}
	if err != nil {
		out.ErrorCode = string(loyalty.ToStandardError(err).Code)
	}
	return out, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
