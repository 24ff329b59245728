package query

import (
	"context"

	"travel-workers/internal/common/logger"
	"travel-workers/internal/models"
)

// Options carries the per-call inputs of a parse.
type Options struct {
	Products      []models.Product
	MyLocation    LocationRef
	EnableAliases bool
}

// Interpreter parses queries using the persisted alias table.
type Interpreter struct {
	repo   *Repository
	logger logger.Logger
}

func NewInterpreter(repo *Repository, log logger.Logger) *Interpreter {
	return &Interpreter{
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"component": "query-interpreter"}),
	}
}

// ParseQuery never fails; an unrecognized phrase yields an empty result.
func (in *Interpreter) ParseQuery(ctx context.Context, text string, opts Options) ParsedQuery {
	aliases := in.repo.GetAliasMap(ctx, opts.EnableAliases)
	q := Parse(text, opts.Products, opts.MyLocation, aliases)
	in.logger.Debug("query parsed", map[string]interface{}{
		"text":      text,
		"category":  q.Category,
		"location":  q.Location.String(),
		"connector": q.UsedConnector,
	})
	return q
}

// GetSuggestion returns nil when nothing actionable was recognized.
func (in *Interpreter) GetSuggestion(ctx context.Context, text string, opts Options) *Suggestion {
	return BuildSuggestion(in.ParseQuery(ctx, text, opts), opts.Products)
}

// Repository exposes the alias and my-location store.
func (in *Interpreter) Repository() *Repository {
	return in.repo
}
