package writer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/component/item/writer"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/engine/step/retry"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	testutil "github.com/tigerroll/graphload/pkg/batch/test"
)

type MockMutator struct {
	mock.Mock
}

func (m *MockMutator) Mutate(ctx context.Context, data interface{}, mode dgraph.MutationType, commitNow bool) dgraph.MutateResult {
	args := m.Called(ctx, data, mode, commitNow)
	return args.Get(0).(dgraph.MutateResult)
}

func TestWrite_Success(t *testing.T) {
	m := new(MockMutator)
	records := testutil.NewTestRecords(3)
	m.On("Mutate", mock.Anything, records, dgraph.SetJSON, false).Return(dgraph.MutateResult{UIDs: []string{"0x1", "0x2"}}).Once()

	w := writer.NewDgraphItemWriter(m, nil, nil)
	res, err := w.Write(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Written)
	assert.Equal(t, []string{"0x1", "0x2"}, res.UIDs)
	m.AssertExpectations(t)
}

func TestWrite_EmptyBatchSkipsDatabase(t *testing.T) {
	m := new(MockMutator)
	w := writer.NewDgraphItemWriter(m, nil, nil)

	res, err := w.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Written)
	m.AssertNotCalled(t, "Mutate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWrite_FailureIsSkippableBatchError(t *testing.T) {
	m := new(MockMutator)
	cause := errors.New("predicate type mismatch")
	m.On("Mutate", mock.Anything, mock.Anything, dgraph.SetJSON, false).Return(dgraph.MutateResult{Err: cause}).Once()

	w := writer.NewDgraphItemWriter(m, nil, nil)
	_, err := w.Write(context.Background(), testutil.NewTestRecords(2))

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	var be *exception.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "writer", be.Module)
	assert.True(t, be.IsSkippable())
	m.AssertExpectations(t)
}

func TestWrite_RetriesTemporaryFailure(t *testing.T) {
	m := new(MockMutator)
	m.On("Mutate", mock.Anything, mock.Anything, dgraph.SetJSON, false).Return(dgraph.MutateResult{Err: errors.New("rpc error: code = Unavailable")}).Once()
	m.On("Mutate", mock.Anything, mock.Anything, dgraph.SetJSON, false).Return(dgraph.MutateResult{UIDs: []string{"0x9"}}).Once()

	policy := retry.NewRetryPolicy(config.RetryConfig{MaxAttempts: 3, InitialInterval: 1, MaxInterval: 1, Factor: 1})
	w := writer.NewDgraphItemWriter(m, policy, nil)
	res, err := w.Write(context.Background(), testutil.NewTestRecords(1))

	require.NoError(t, err)
	assert.Equal(t, []string{"0x9"}, res.UIDs)
	m.AssertNumberOfCalls(t, "Mutate", 2)
}
