package rewardbooking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/loyalty"
)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestHandler(t *testing.T) (*Handler, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	log := logger.NewTestLogger(t)
	return NewHandler(createTestConfig(), loyalty.NewLedger(store, log), log), store
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		inputs         []*Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:   "first booking earns points and a badge",
			inputs: []*Input{{ID: "bk-1", Amount: 420.7, UserID: "u1", Type: "hotel"}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, output.Success)
				assert.Empty(t, output.ErrorCode)
				assert.Equal(t, 420, output.Points.BasePoints)
				assert.Equal(t, 21, output.Points.BonusPoints)
				assert.Equal(t, 441, output.Points.TotalPoints)
				require.NotNil(t, output.BadgeAwarded)
				assert.Equal(t, "wanderer", output.BadgeAwarded.ID)
				assert.Equal(t, 541, output.NewBalance)
			},
		},
		{
			name: "duplicate booking completes without points",
			inputs: []*Input{
				{ID: "bk-1", Amount: 100, UserID: "u1"},
				{ID: "bk-1", Amount: 100, UserID: "u1"},
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.False(t, output.Success)
				assert.Equal(t, "Booking already rewarded", output.Error)
				assert.Equal(t, string(apperrors.ErrCodeBookingRewarded), output.ErrorCode)
				assert.Equal(t, 1, output.TotalBookings)
			},
		},
		{
			name:   "missing amount",
			inputs: []*Input{{ID: "bk-2", UserID: "u1"}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.False(t, output.Success)
				assert.Equal(t, "Missing required booking fields", output.Error)
				assert.Equal(t, string(apperrors.ErrCodeInvalidBooking), output.ErrorCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := createTestHandler(t)
			var output *Output
			for _, in := range tt.inputs {
				var err error
				output, err = handler.Execute(context.Background(), in)
				require.NoError(t, err)
			}
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_StorageDown(t *testing.T) {
	handler, store := createTestHandler(t)
	store.FailWith = errors.New("connection refused")

	output, err := handler.Execute(context.Background(), &Input{ID: "bk-1", Amount: 100, UserID: "u1"})
	require.Error(t, err)
	assert.Nil(t, output)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeStorageUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestOutput_FlattensResult(t *testing.T) {
	out := Output{ErrorCode: "X"}
	out.Success = true
	out.BookingID = "bk-1"

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	assert.Equal(t, true, vars["success"])
	assert.Equal(t, "bk-1", vars["bookingId"])
	assert.Equal(t, "X", vars["errorCode"])
}

func TestInput_DecodesProcessVariables(t *testing.T) {
	tests := []struct {
		name      string
		variables string
	}{
		{
			name:      "booking completion payload",
			variables: `{"id":"bk-1","amount":420.7,"userId":"u1","type":"hotel","checkInDate":"2026-04-01"}`,
		},
		{
			name:      "prefixed field names",
			variables: `{"bookingId":"bk-1","amount":420.7,"userId":"u1","bookingType":"hotel","checkInDate":"2026-04-01"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := createTestHandler(t)

			var input Input
			require.NoError(t, json.Unmarshal([]byte(tt.variables), &input))

			output, err := handler.Execute(context.Background(), &input)
			require.NoError(t, err)
			assert.True(t, output.Success, output.Error)
			assert.Equal(t, "bk-1", output.BookingID)
			assert.Equal(t, 441, output.Points.TotalPoints)
			require.NotNil(t, output.Transaction)
			assert.Equal(t, "hotel", output.Transaction.Metadata["bookingType"])
			assert.Equal(t, "2026-04-01", output.Transaction.Metadata["checkInDate"])
		})
	}
}

// fakeGateway records the job commands a handler sends.
type fakeGateway struct {
	pb.GatewayClient
	completeErr error
	completed   []*pb.CompleteJobRequest
	thrown      []*pb.ThrowErrorRequest
	failed      []*pb.FailJobRequest
}

func (g *fakeGateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.completed = append(g.completed, in)
	if g.completeErr != nil {
		return nil, g.completeErr
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *fakeGateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

func (g *fakeGateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func noRetry(context.Context, error) bool { return false }

type fakeJobClient struct{ gw *fakeGateway }

func (c fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gw, noRetry)
}

func (c fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gw, noRetry)
}

func (c fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gw, noRetry)
}

func bookingJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: TaskType, Retries: 3, Variables: variables}}
}

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name          string
		variables     string
		completeErr   error
		wantErr       bool
		wantCompleted int
		wantThrown    string
	}{
		{
			name:          "completes with the reward",
			variables:     `{"id":"bk-1","amount":420.7,"userId":"u1","type":"hotel"}`,
			wantCompleted: 1,
		},
		{
			name:          "complete command failure is returned",
			variables:     `{"id":"bk-1","amount":420.7,"userId":"u1"}`,
			completeErr:   errors.New("gateway unavailable"),
			wantErr:       true,
			wantCompleted: 1,
		},
		{
			name:       "unreadable variables throw a validation error",
			variables:  `{"id":`,
			wantErr:    true,
			wantThrown: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := createTestHandler(t)
			gw := &fakeGateway{completeErr: tt.completeErr}

			err := handler.Handle(fakeJobClient{gw: gw}, bookingJob(tt.variables))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			require.Len(t, gw.completed, tt.wantCompleted)
			if tt.wantCompleted > 0 {
				var vars map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(gw.completed[0].Variables), &vars))
				assert.Equal(t, true, vars["success"])
				assert.Equal(t, "bk-1", vars["bookingId"])
			}
			if tt.wantThrown != "" {
				require.Len(t, gw.thrown, 1)
				assert.Equal(t, tt.wantThrown, gw.thrown[0].ErrorCode)
			}
		})
	}
}
