package managelocationaliases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/query"
)

func createTestHandler(t *testing.T) (*Handler, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	log := logger.NewTestLogger(t)
	return NewHandler(&Config{Timeout: 5 * time.Second}, query.NewRepository(store, log), log), store
}

func TestHandler_Execute_AliasLifecycle(t *testing.T) {
	handler, _ := createTestHandler(t)
	ctx := context.Background()

	out, err := handler.Execute(ctx, &Input{Action: "list"})
	require.NoError(t, err)
	assert.Empty(t, out.Aliases)
	assert.Greater(t, out.BuiltinCount, 0)

	out, err = handler.Execute(ctx, &Input{
		Action: "add",
		Key:    "  Umhlanga Rocks ",
		Target: &query.LocationRef{City: "Umhlanga"},
	})
	require.NoError(t, err)
	assert.False(t, out.ShadowsBuiltin)
	require.Len(t, out.Aliases, 1)
	assert.Equal(t, "umhlanga rocks", out.Aliases[0].Key)

	out, err = handler.Execute(ctx, &Input{
		Action: "ADD",
		Key:    "ct",
		Target: &query.LocationRef{Province: "Western Cape"},
	})
	require.NoError(t, err)
	assert.True(t, out.ShadowsBuiltin)
	assert.Len(t, out.Aliases, 2)

	out, err = handler.Execute(ctx, &Input{Action: "remove", Key: "umhlanga rocks"})
	require.NoError(t, err)
	assert.True(t, out.Removed)
	assert.Len(t, out.Aliases, 1)

	out, err = handler.Execute(ctx, &Input{Action: "remove", Key: "never added"})
	require.NoError(t, err)
	assert.False(t, out.Removed)
}

func TestHandler_Execute_SetMyLocation(t *testing.T) {
	handler, _ := createTestHandler(t)

	out, err := handler.Execute(context.Background(), &Input{
		Action:     "set-my-location",
		MyLocation: &query.LocationRef{City: "Durban"},
	})
	require.NoError(t, err)
	assert.Equal(t, query.LocationRef{City: "Durban"}, out.MyLocation)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		failWith error
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "unknown action",
			input:    &Input{Action: "rename"},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "add without target",
			input:    &Input{Action: "add", Key: "umhlanga"},
			wantCode: apperrors.ErrCodeInvalidAlias,
		},
		{
			name:     "target with two levels",
			input:    &Input{Action: "add", Key: "north coast", Target: &query.LocationRef{City: "Umhlanga", Province: "KwaZulu-Natal"}},
			wantCode: apperrors.ErrCodeInvalidAlias,
		},
		{
			name:     "blank key",
			input:    &Input{Action: "add", Key: "   ", Target: &query.LocationRef{City: "Umhlanga"}},
			wantCode: apperrors.ErrCodeInvalidAlias,
		},
		{
			name:     "remove without key",
			input:    &Input{Action: "remove"},
			wantCode: apperrors.ErrCodeInvalidAlias,
		},
		{
			name:     "set-my-location without location",
			input:    &Input{Action: "set-my-location"},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "storage down on add",
			input:    &Input{Action: "add", Key: "umhlanga", Target: &query.LocationRef{City: "Umhlanga"}},
			failWith: errors.New("connection refused"),
			wantCode: apperrors.ErrCodeStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := createTestHandler(t)
			store.FailWith = tt.failWith

			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
