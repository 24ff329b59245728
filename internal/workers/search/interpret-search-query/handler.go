// internal/workers/search/interpret-search-query/handler.go
package interpretsearchquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"travel-workers/internal/common/catalog"
	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/common/metrics"
	"travel-workers/internal/query"
)

const (
	TaskType = "interpret-search-query"
)

type Handler struct {
	config      *Config
	interpreter *query.Interpreter
	catalog     catalog.Source
	errors      *apperrors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, interpreter *query.Interpreter, products catalog.Source, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		interpreter: interpreter,
		catalog:     products,
		errors:      apperrors.NewErrorHandler(log),
		logger:      log,
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
	text := strings.TrimSpace(input.Query)
	if h.config.MaxQueryLen > 0 && utf8.RuneCountInString(text) > h.config.MaxQueryLen {
		return nil, apperrors.NewInvalidSearchQueryError(
			fmt.Sprintf("query exceeds %d characters", h.config.MaxQueryLen))
	}

	products, err := h.catalog.Products(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError("products", err)
	}

	repo := h.interpreter.Repository()
	myLocation := repo.LoadMyLocation(ctx)
	if input.MyLocation != nil && !input.MyLocation.IsEmpty() {
		myLocation = *input.MyLocation
		if input.RememberLocation && !repo.SaveMyLocation(ctx, myLocation) {
			h.logger.Warn("could not remember location", map[string]interface{}{
				"location": myLocation.String(),
			})
		}
	}

	enableAliases := h.config.EnableAliases
	if input.EnableAliases != nil {
		enableAliases = *input.EnableAliases
	}

	opts := query.Options{
		Products:      products,
		MyLocation:    myLocation,
		EnableAliases: enableAliases,
	}
	parsed := h.interpreter.ParseQuery(ctx, text, opts)
	suggestion := query.BuildSuggestion(parsed, products)

	metrics.QueriesInterpreted.WithLabelValues(
		metrics.QueryOutcome(parsed.Category != "", !parsed.Location.IsEmpty()),
	).Inc()

	out := &Output{
		Parsed:        parsed,
		HasSuggestion: suggestion != nil,
		Suggestion:    suggestion,
	}
	if suggestion != nil {
		out.SearchParams = suggestion.QueryString()
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
