package dgraph

import (
	"context"
	"fmt"

	"github.com/dgraph-io/dgo/v230"
	"github.com/dgraph-io/dgo/v230/protos/api"

	"github.com/tigerroll/graphload/pkg/batch/core/tx"
)

// dgraphTx adapts *dgo.Txn to tx.Tx.
type dgraphTx struct {
	txn *dgo.Txn
}

func (t *dgraphTx) Mutate(ctx context.Context, mu *tx.Mutation) (*tx.Assigned, error) {
	resp, err := t.txn.Mutate(ctx, &api.Mutation{
		SetJson:    mu.SetJSON,
		DeleteJson: mu.DeleteJSON,
		CommitNow:  mu.CommitNow,
	})
	if err != nil {
		return nil, err
	}
	return &tx.Assigned{UIDs: resp.GetUids()}, nil
}

func (t *dgraphTx) Query(ctx context.Context, query string) (*tx.Response, error) {
	resp, err := t.txn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return &tx.Response{JSON: resp.GetJson()}, nil
}

func (t *dgraphTx) QueryWithVars(ctx context.Context, query string, vars map[string]string) (*tx.Response, error) {
	resp, err := t.txn.QueryWithVars(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return &tx.Response{JSON: resp.GetJson()}, nil
}

// TransactionManager implements tx.TransactionManager and tx.SchemaOperator
// for a Dgraph client.
type TransactionManager struct {
	client *dgo.Dgraph
}

// NewTransactionManager creates a TransactionManager for conn.
func NewTransactionManager(conn *Connection) *TransactionManager {
	return &TransactionManager{client: conn.Client()}
}

// Begin starts a read-write transaction, or a read-only one when requested.
func (m *TransactionManager) Begin(ctx context.Context, opts ...*tx.TxOptions) (tx.Tx, error) {
	var o tx.TxOptions
	for _, opt := range opts {
		if opt != nil {
			o = *opt
		}
	}
	if !o.ReadOnly {
		return &dgraphTx{txn: m.client.NewTxn()}, nil
	}
	txn := m.client.NewReadOnlyTxn()
	if o.BestEffort {
		txn = txn.BestEffort()
	}
	return &dgraphTx{txn: txn}, nil
}

// Commit commits t.
func (m *TransactionManager) Commit(ctx context.Context, t tx.Tx) error {
	dt, err := unwrap(t)
	if err != nil {
		return err
	}
	return dt.txn.Commit(ctx)
}

// Rollback discards t. Discarding a committed transaction is a no-op.
func (m *TransactionManager) Rollback(ctx context.Context, t tx.Tx) error {
	dt, err := unwrap(t)
	if err != nil {
		return err
	}
	return dt.txn.Discard(ctx)
}

// Alter runs a schema operation. The client reports failures only as errors,
// so a nil error is mapped to the Success status code.
func (m *TransactionManager) Alter(ctx context.Context, op *tx.Operation) (*tx.Payload, error) {
	if err := m.client.Alter(ctx, &api.Operation{Schema: op.Schema, DropAll: op.DropAll}); err != nil {
		return nil, err
	}
	return &tx.Payload{Code: tx.StatusSuccess, Message: "Done"}, nil
}

func unwrap(t tx.Tx) (*dgraphTx, error) {
	dt, ok := t.(*dgraphTx)
	if !ok {
		return nil, fmt.Errorf("transaction of type %T was not created by this manager", t)
	}
	return dt, nil
}

var (
	_ tx.TransactionManager = (*TransactionManager)(nil)
	_ tx.SchemaOperator     = (*TransactionManager)(nil)
)
