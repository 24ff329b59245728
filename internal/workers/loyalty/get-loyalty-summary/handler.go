// internal/workers/loyalty/get-loyalty-summary/handler.go
package getloyaltysummary

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
	TaskType = "get-loyalty-summary"
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

// execute never fails on storage: an unreachable account reads as a new one.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewInvalidInputError("userId is required")
	}

	recent := h.config.RecentLimit
	if input.Recent > 0 {
		recent = input.Recent
	}
	summary := h.ledger.GetSummary(ctx, userID, recent)
	acct := summary.Account

	out := &Output{
		UserID:          acct.UserID,
		AvailablePoints: acct.AvailablePoints,
		TotalPoints:     acct.TotalPoints,
		Tier:            summary.Tier,
		TierProgress:    acct.TierProgress,
		NextTier:        summary.NextTier,
		Badges:          summary.Badges,
		ReferralCode:    acct.ReferralCode,
		TotalBookings:   acct.TotalBookings,
		History:         acct.History,
	}
	if input.BookingAmount > 0 {
		preview := h.ledger.CalculatePointsFromBooking(ctx, input.BookingAmount, userID)
		out.PointsPreview = &preview
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
