package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
)

func jobWithRetries(n int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "reward-booking", Retries: n}}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		retries     int32
		err         error
		wantRetry   bool
		wantRetries int
		wantBPMN    string
	}{
		{
			name:        "storage outage consumes one retry",
			retries:     3,
			err:         NewStorageUnavailableError("put", fmt.Errorf("timeout")),
			wantRetry:   true,
			wantRetries: 2,
			wantBPMN:    "STORAGE_ERROR",
		},
		{
			name:        "engine retries above the table are capped",
			retries:     10,
			err:         fmt.Errorf("load: %w", NewStorageUnavailableError("get", fmt.Errorf("refused"))),
			wantRetry:   true,
			wantRetries: 3,
			wantBPMN:    "STORAGE_ERROR",
		},
		{
			name:     "exhausted job is thrown",
			retries:  0,
			err:      NewStorageUnavailableError("get", fmt.Errorf("refused")),
			wantBPMN: "STORAGE_ERROR",
		},
		{
			name:     "validation errors are never retried",
			retries:  3,
			err:      NewInvalidSearchQueryError("query is required"),
			wantBPMN: "VALIDATION_ERROR",
		},
		{
			name:     "unknown errors are internal",
			retries:  3,
			err:      stderrors.New("boom"),
			wantBPMN: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(jobWithRetries(tt.retries), tt.err)
			assert.Equal(t, tt.wantRetry, d.Retry)
			assert.Equal(t, tt.wantRetries, d.Retries)
			assert.Equal(t, tt.wantBPMN, d.BPMN.Code)
		})
	}
}
