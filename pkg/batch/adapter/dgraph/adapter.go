package dgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/core/tx"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// ErrNilRequest is returned for a mutation without data. No transaction is opened.
var ErrNilRequest = errors.New("mutation request has no data")

func init() {
	exception.RegisterErrorType("dgraph.ErrNilRequest", ErrNilRequest)
}

// MutationType selects how mutation data is applied.
type MutationType int

const (
	// SetJSON adds or updates the given nodes.
	SetJSON MutationType = iota
	// DeleteJSON deletes the given nodes or edges.
	DeleteJSON
)

func (t MutationType) String() string {
	if t == DeleteJSON {
		return "deleteJson"
	}
	return "setJson"
}

// MutateResult is the outcome of Mutate. Err is nil on success; UIDs may be
// empty on success when the database assigned no new identifiers.
type MutateResult struct {
	UIDs []string
	Err  error
}

// OK reports whether the mutation succeeded.
func (r MutateResult) OK() bool { return r.Err == nil }

// QueryResult is the outcome of Query.
type QueryResult struct {
	Data map[string]interface{}
	Err  error
}

// OK reports whether the query succeeded.
func (r QueryResult) OK() bool { return r.Err == nil }

// Adapter performs best-effort database operations. Every method logs its own
// failures and reports them in its result; none of them panics.
type Adapter struct {
	tm       tx.TransactionManager
	schema   tx.SchemaOperator
	timeout  time.Duration
	recorder metrics.MetricRecorder
}

// NewAdapter creates an Adapter. cfg supplies the per-request timeout; a nil
// recorder disables latency metrics.
func NewAdapter(tm tx.TransactionManager, schema tx.SchemaOperator, cfg *config.DgraphConfig, recorder metrics.MetricRecorder) *Adapter {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	a := &Adapter{tm: tm, schema: schema, recorder: recorder}
	if cfg != nil {
		a.timeout = cfg.RequestTimeoutDuration()
	}
	return a
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *Adapter) observe(ctx context.Context, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.recorder.RecordDuration(ctx, op, time.Since(start), map[string]string{"status": status})
}

// Mutate applies data (typically a batch of records) as a single mutation in
// its own transaction. The transaction is committed unless commitNow asks the
// database to commit with the mutation, and is always discarded afterwards.
func (a *Adapter) Mutate(ctx context.Context, data interface{}, mode MutationType, commitNow bool) (result MutateResult) {
	if data == nil {
		logger.Errorf("Dgraph mutate rejected: %v", ErrNilRequest)
		return MutateResult{Err: ErrNilRequest}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Errorf("Dgraph mutate failed to encode data: %v", err)
		return MutateResult{Err: fmt.Errorf("encoding mutation: %w", err)}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { a.observe(ctx, "mutate", start, result.Err) }()

	t, err := a.tm.Begin(ctx)
	if err != nil {
		logger.Errorf("Dgraph mutate failed to begin transaction: %v", err)
		return MutateResult{Err: err}
	}
	defer a.discard(ctx, t)

	mu := &tx.Mutation{CommitNow: commitNow}
	if mode == DeleteJSON {
		mu.DeleteJSON = payload
	} else {
		mu.SetJSON = payload
	}

	assigned, err := t.Mutate(ctx, mu)
	if err != nil {
		logger.Errorf("Dgraph mutate (%s) failed: %v", mode, err)
		return MutateResult{Err: err}
	}
	if !commitNow {
		if err := a.tm.Commit(ctx, t); err != nil {
			logger.Errorf("Dgraph commit failed: %v", err)
			return MutateResult{Err: err}
		}
	}
	return MutateResult{UIDs: sortedUIDs(assigned)}
}

// Query runs query in a read-only transaction. When vars is non-empty every
// value is converted to its string form and QueryWithVars is used.
func (a *Adapter) Query(ctx context.Context, query string, vars map[string]interface{}) (result QueryResult) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { a.observe(ctx, "query", start, result.Err) }()

	t, err := a.tm.Begin(ctx, &tx.TxOptions{ReadOnly: true})
	if err != nil {
		logger.Errorf("Dgraph query failed to begin transaction: %v", err)
		return QueryResult{Err: err}
	}
	defer a.discard(ctx, t)

	var resp *tx.Response
	if len(vars) > 0 {
		resp, err = t.QueryWithVars(ctx, query, stringifyVars(vars))
	} else {
		resp, err = t.Query(ctx, query)
	}
	if err != nil {
		logger.Errorf("Dgraph query failed: %v", err)
		return QueryResult{Err: err}
	}

	data := map[string]interface{}{}
	if resp != nil && len(resp.JSON) > 0 {
		dec := json.NewDecoder(bytes.NewReader(resp.JSON))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			logger.Errorf("Dgraph query returned undecodable payload: %v", err)
			return QueryResult{Err: fmt.Errorf("decoding query response: %w", err)}
		}
	}
	return QueryResult{Data: data}
}

// AlterSchema applies schema. It reports true only when the database answers
// with the Success status.
func (a *Adapter) AlterSchema(ctx context.Context, schema string) bool {
	return a.alter(ctx, "alter_schema", &tx.Operation{Schema: schema})
}

// DropAll removes all data and schema. It reports true only when the database
// answers with the Success status.
func (a *Adapter) DropAll(ctx context.Context) bool {
	return a.alter(ctx, "drop_all", &tx.Operation{DropAll: true})
}

func (a *Adapter) alter(ctx context.Context, op string, operation *tx.Operation) bool {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	start := time.Now()

	payload, err := a.schema.Alter(ctx, operation)
	if err == nil && (payload == nil || payload.Code != tx.StatusSuccess) {
		err = fmt.Errorf("unexpected status %q", statusCode(payload))
	}
	a.observe(ctx, op, start, err)
	if err != nil {
		logger.Errorf("Dgraph %s failed: %v", op, err)
		return false
	}
	logger.Infof("Dgraph %s succeeded", op)
	return true
}

func (a *Adapter) discard(ctx context.Context, t tx.Tx) {
	if err := a.tm.Rollback(ctx, t); err != nil {
		logger.Warnf("Dgraph discard failed: %v", err)
	}
}

func statusCode(p *tx.Payload) string {
	if p == nil {
		return ""
	}
	return p.Code
}

// sortedUIDs returns the assigned identifiers ordered by blank node name.
func sortedUIDs(assigned *tx.Assigned) []string {
	if assigned == nil || len(assigned.UIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(assigned.UIDs))
	for k := range assigned.UIDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	uids := make([]string, len(keys))
	for i, k := range keys {
		uids[i] = assigned.UIDs[k]
	}
	return uids
}

func stringifyVars(vars map[string]interface{}) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = fmt.Sprint(v)
	}
	return out
}
