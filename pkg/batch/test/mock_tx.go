package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tigerroll/graphload/pkg/batch/core/tx"
)

// MockTx is a mock implementation of the tx.Tx interface.
type MockTx struct {
	mock.Mock
}

// Mutate mocks tx.Tx.Mutate.
func (m *MockTx) Mutate(ctx context.Context, mu *tx.Mutation) (*tx.Assigned, error) {
	args := m.Called(ctx, mu)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tx.Assigned), args.Error(1)
}

// Query mocks tx.Tx.Query.
func (m *MockTx) Query(ctx context.Context, query string) (*tx.Response, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tx.Response), args.Error(1)
}

// QueryWithVars mocks tx.Tx.QueryWithVars.
func (m *MockTx) QueryWithVars(ctx context.Context, query string, vars map[string]string) (*tx.Response, error) {
	args := m.Called(ctx, query, vars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tx.Response), args.Error(1)
}

// MockTxManager is a mock implementation of the tx.TransactionManager interface.
type MockTxManager struct {
	mock.Mock
}

// Begin mocks tx.TransactionManager.Begin. Options are recorded as a slice.
func (m *MockTxManager) Begin(ctx context.Context, opts ...*tx.TxOptions) (tx.Tx, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tx.Tx), args.Error(1)
}

// Commit mocks tx.TransactionManager.Commit.
func (m *MockTxManager) Commit(ctx context.Context, t tx.Tx) error {
	return m.Called(ctx, t).Error(0)
}

// Rollback mocks tx.TransactionManager.Rollback.
func (m *MockTxManager) Rollback(ctx context.Context, t tx.Tx) error {
	return m.Called(ctx, t).Error(0)
}

// MockSchemaOperator is a mock implementation of tx.SchemaOperator.
type MockSchemaOperator struct {
	mock.Mock
}

// Alter mocks tx.SchemaOperator.Alter.
func (m *MockSchemaOperator) Alter(ctx context.Context, op *tx.Operation) (*tx.Payload, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tx.Payload), args.Error(1)
}

var (
	_ tx.Tx                 = (*MockTx)(nil)
	_ tx.TransactionManager = (*MockTxManager)(nil)
	_ tx.SchemaOperator     = (*MockSchemaOperator)(nil)
)
