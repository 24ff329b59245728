package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 7)

	isq, ok := reg.Find("interpret-search-query")
	require.True(t, ok)
	assert.Equal(t, CategorySearch, isq.Category)
	assert.Equal(t, []string{"CATALOG_ERROR", "VALIDATION_ERROR"}, isq.BPMNErrors)
	assert.Equal(t, 3, isq.Retries)

	summary, ok := reg.Find("get-loyalty-summary")
	require.True(t, ok)
	assert.Equal(t, 0, summary.Retries)

	_, ok = reg.Find("send-email")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := func() Activity {
		return Activity{ID: "a", DisplayName: "A", Category: CategoryLoyalty, TaskType: "a", Timeout: "5s"}
	}

	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{
			name:    "empty",
			mutate:  func(r *ActivityRegistry) { r.Activities = nil },
			wantErr: "no activities",
		},
		{
			name: "duplicate id",
			mutate: func(r *ActivityRegistry) {
				b := valid()
				b.TaskType = "b"
				r.Activities = append(r.Activities, b)
			},
			wantErr: "duplicate activity id: a",
		},
		{
			name: "duplicate task type",
			mutate: func(r *ActivityRegistry) {
				b := valid()
				b.ID = "b"
				r.Activities = append(r.Activities, b)
			},
			wantErr: "duplicate task type: a",
		},
		{
			name:    "bad timeout",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].Timeout = "soon" },
			wantErr: "invalid timeout",
		},
		{
			name:    "unknown error code",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].ErrorCodes = []string{"ZOHO_DOWN"} },
			wantErr: "unknown error code ZOHO_DOWN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{valid()}}
			tt.mutate(reg)
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Save(Default(), path, now))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00Z", reg.LastUpdated)
	assert.Equal(t, Default().TaskTypes(), reg.TaskTypes())
}
