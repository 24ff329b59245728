package interpretsearchquery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-workers/internal/common/catalog"
	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/models"
	"travel-workers/internal/query"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		MaxQueryLen:   64,
		EnableAliases: true,
	}
}

func createTestHandler(t *testing.T, source catalog.Source) (*Handler, *query.Repository) {
	log := logger.NewTestLogger(t)
	repo := query.NewRepository(kvstore.NewMemoryStore(), log)
	if source == nil {
		source = catalog.NewStaticSource(catalog.SampleProducts())
	}
	return NewHandler(createTestConfig(), query.NewInterpreter(repo, log), source, log), repo
}

func boolPtr(b bool) *bool { return &b }

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		setup          func(t *testing.T, repo *query.Repository)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "category and city",
			input: &Input{Query: "hotels in durban"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "Lodging", output.Parsed.Category)
				assert.Equal(t, query.LocationRef{City: "Durban"}, output.Parsed.Location)
				require.True(t, output.HasSuggestion)
				assert.Equal(t, "Show Lodging in Durban (1)", output.Suggestion.Label)
				assert.Equal(t, "category=Lodging&city=Durban", output.SearchParams)
			},
		},
		{
			name:  "near me uses the location from the job",
			input: &Input{Query: "tours near me", MyLocation: &query.LocationRef{City: "Cape Town", Country: "South Africa"}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "Tour", output.Parsed.Category)
				assert.Equal(t, query.LocationRef{City: "Cape Town"}, output.Parsed.Location)
				assert.Equal(t, 1, output.Suggestion.Count)
			},
		},
		{
			name:  "near me falls back to the saved location",
			input: &Input{Query: "tours near me"},
			setup: func(t *testing.T, repo *query.Repository) {
				require.True(t, repo.SaveMyLocation(context.Background(), query.LocationRef{Province: "Western Cape"}))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, query.LocationRef{Province: "Western Cape"}, output.Parsed.Location)
				assert.Equal(t, "Show Tour in Western Cape (2)", output.Suggestion.Label)
			},
		},
		{
			name:  "aliases can be switched off per job",
			input: &Input{Query: "hotels in kzn", EnableAliases: boolPtr(false)},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "Lodging", output.Parsed.Category)
				assert.True(t, output.Parsed.Location.IsEmpty())
				assert.Equal(t, "Show Lodging (5)", output.Suggestion.Label)
			},
		},
		{
			name:  "nothing recognised",
			input: &Input{Query: "something else entirely"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, output.Parsed.IsEmpty())
				assert.False(t, output.HasSuggestion)
				assert.Nil(t, output.Suggestion)
				assert.Empty(t, output.SearchParams)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := createTestHandler(t, nil)
			if tt.setup != nil {
				tt.setup(t, repo)
			}

			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_RememberLocation(t *testing.T) {
	handler, repo := createTestHandler(t, nil)
	loc := query.LocationRef{City: "Durban"}

	_, err := handler.Execute(context.Background(), &Input{
		Query:            "food near me",
		MyLocation:       &loc,
		RememberLocation: true,
	})
	require.NoError(t, err)
	assert.Equal(t, loc, repo.LoadMyLocation(context.Background()))
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   catalog.Source
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "query too long",
			input:    &Input{Query: strings.Repeat("a", 65)},
			wantCode: apperrors.ErrCodeInvalidSearchQuery,
		},
		{
			name: "catalog down",
			source: catalog.SourceFunc(func(context.Context) ([]models.Product, error) {
				return nil, errors.New("connection refused")
			}),
			input:    &Input{Query: "hotels in durban"},
			wantCode: apperrors.ErrCodeCatalogUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := createTestHandler(t, tt.source)
			output, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
