// Package tx provides the transaction abstraction the batch engine writes through.
// A transaction is scoped to exactly one batch: it is begun, receives a single
// mutation, is committed on success and is always discarded at the end.
package tx

import "context"

// Mutation is a single JSON mutation applied inside a transaction.
type Mutation struct {
	// SetJSON holds the nodes to add or update, encoded as a JSON array or object.
	SetJSON []byte
	// DeleteJSON holds the nodes or edges to delete.
	DeleteJSON []byte
	// CommitNow commits the mutation as part of the request. The transaction
	// must not be committed again afterwards.
	CommitNow bool
}

// Assigned is the database's answer to a mutation.
type Assigned struct {
	// UIDs maps blank node names to the identifiers the database assigned.
	UIDs map[string]string
}

// Response carries a query result as raw JSON.
type Response struct {
	JSON []byte
}

// TxOptions are optional transaction settings.
type TxOptions struct {
	// ReadOnly requests a read-only transaction (queries only).
	ReadOnly bool
	// BestEffort relaxes read consistency for read-only transactions.
	BestEffort bool
}

// Tx represents an ongoing transaction.
type Tx interface {
	// Mutate applies a mutation within the transaction.
	Mutate(ctx context.Context, mu *Mutation) (*Assigned, error)
	// Query runs a query within the transaction.
	Query(ctx context.Context, query string) (*Response, error)
	// QueryWithVars runs a parameterised query. Variable names include the leading '$'.
	QueryWithVars(ctx context.Context, query string, vars map[string]string) (*Response, error)
}

// TransactionManager manages the lifecycle of transactions.
type TransactionManager interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context, opts ...*TxOptions) (Tx, error)
	// Commit makes the transaction's mutations durable.
	Commit(ctx context.Context, tx Tx) error
	// Rollback discards the transaction. It is safe to call after Commit and
	// is how every transaction is finalised.
	Rollback(ctx context.Context, tx Tx) error
}

// Operation is an administrative schema change.
type Operation struct {
	// Schema is a schema definition passed to the database verbatim.
	Schema string
	// DropAll removes all data and schema.
	DropAll bool
}

// Payload is the status returned by an administrative operation.
type Payload struct {
	Code    string
	Message string
}

// StatusSuccess is the Payload code of a successful operation.
const StatusSuccess = "Success"

// SchemaOperator performs administrative operations outside any transaction.
type SchemaOperator interface {
	Alter(ctx context.Context, op *Operation) (*Payload, error)
}
