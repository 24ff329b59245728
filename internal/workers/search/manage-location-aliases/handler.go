// internal/workers/search/manage-location-aliases/handler.go
package managelocationaliases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/validation"
	"travel-workers/internal/query"
)

const (
	TaskType = "manage-location-aliases"
)

type Handler struct {
	config *Config
	repo   *query.Repository
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, repo *query.Repository, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		repo:   repo,
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

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return err
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{Action: strings.ToLower(strings.TrimSpace(input.Action))}

	switch out.Action {
	case ActionList, "":
		out.Action = ActionList
	case ActionAdd:
		if v := validation.ValidateAlias(aliasDocument(input)); !v.Valid {
			return nil, apperrors.NewInvalidAliasError(v.Error())
		}
		shadows, err := h.repo.AddCustomAlias(ctx, input.Key, *input.Target)
		if err != nil {
			return nil, mapRepoError(err)
		}
		out.ShadowsBuiltin = shadows
		h.logger.Info("custom alias added", map[string]interface{}{
			"key":            query.NormalizeAliasKey(input.Key),
			"target":         input.Target.String(),
			"shadowsBuiltin": shadows,
		})
	case ActionRemove:
		if strings.TrimSpace(input.Key) == "" {
			return nil, apperrors.NewInvalidAliasError("key is required")
		}
		removed, err := h.repo.RemoveCustomAlias(ctx, input.Key)
		if err != nil {
			return nil, mapRepoError(err)
		}
		out.Removed = removed
	case ActionSetMyLocation:
		if input.MyLocation == nil || input.MyLocation.IsEmpty() {
			return nil, apperrors.NewInvalidInputError("myLocation is required")
		}
		if !h.repo.SaveMyLocation(ctx, *input.MyLocation) {
			return nil, apperrors.NewStorageUnavailableError("set", query.ErrStorageWrite)
		}
	default:
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown action %q", input.Action))
	}

	out.Aliases = h.repo.LoadCustomAliases(ctx)
	if out.Aliases == nil {
		out.Aliases = []query.LocationAlias{}
	}
	out.BuiltinCount = len(query.BuiltinAliases())
	out.MyLocation = h.repo.LoadMyLocation(ctx)
	return out, nil
}

// aliasDocument shapes the input the way the alias schema expects it.
func aliasDocument(input *Input) map[string]interface{} {
	doc := map[string]interface{}{"key": input.Key}
	if input.Target != nil {
		target := map[string]interface{}{}
		for _, l := range query.Levels {
			if v := input.Target.Get(l); v != "" {
				target[string(l)] = v
			}
		}
		doc["target"] = target
	}
	return doc
}

func mapRepoError(err error) error {
	if errors.Is(err, query.ErrInvalidAlias) {
		return apperrors.NewInvalidAliasError(err.Error())
	}
	if errors.Is(err, query.ErrStorageWrite) {
		return apperrors.NewStorageUnavailableError("set", err)
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
