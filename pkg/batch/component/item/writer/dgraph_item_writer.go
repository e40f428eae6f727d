// Package writer writes batches of records to the graph database.
package writer

import (
	"context"
	"fmt"

	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/engine/step/retry"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// Mutator is the part of *dgraph.Adapter the writer needs.
type Mutator interface {
	Mutate(ctx context.Context, data interface{}, mode dgraph.MutationType, commitNow bool) dgraph.MutateResult
}

// DgraphItemWriter sends each batch as one set mutation in its own transaction.
type DgraphItemWriter struct {
	mutator  Mutator
	policy   retry.RetryPolicy
	recorder metrics.MetricRecorder
}

// NewDgraphItemWriter creates a writer. A nil policy makes a single attempt;
// a nil recorder disables retry metrics.
func NewDgraphItemWriter(mutator Mutator, policy retry.RetryPolicy, recorder metrics.MetricRecorder) *DgraphItemWriter {
	if policy == nil {
		policy = retry.NewRetryPolicy(config.RetryConfig{MaxAttempts: 1})
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &DgraphItemWriter{mutator: mutator, policy: policy, recorder: recorder}
}

// Open does nothing; the database connection is owned by the application.
func (w *DgraphItemWriter) Open(ctx context.Context) error {
	return nil
}

// Write mutates items, retrying temporary failures as the policy allows.
// The returned error is a skippable BatchError: the batch is lost but the job may continue.
func (w *DgraphItemWriter) Write(ctx context.Context, items []model.Record) (port.WriteResult, error) {
	if len(items) == 0 {
		return port.WriteResult{}, nil
	}
	jobName := jobNameOf(ctx)

	var result dgraph.MutateResult
	err := retry.Do(ctx, w.policy, func() error {
		result = w.mutator.Mutate(ctx, items, dgraph.SetJSON, false)
		return result.Err
	}, func(attempt int, err error) {
		logger.Warnf("DgraphItemWriter: attempt %d/%d for %d records failed, retrying: %v", attempt, w.policy.GetMaxAttempts(), len(items), err)
		w.recorder.RecordBatchRetry(ctx, jobName, "temporary")
	})
	if err != nil {
		return port.WriteResult{}, exception.NewBatchError("writer", fmt.Sprintf("batch of %d records was not written", len(items)), err, true, false)
	}

	logger.Debugf("DgraphItemWriter: wrote %d records, %d new uids.", len(items), len(result.UIDs))
	return port.WriteResult{Written: len(items), UIDs: result.UIDs}, nil
}

// Close does nothing.
func (w *DgraphItemWriter) Close(ctx context.Context) error {
	return nil
}

func jobNameOf(ctx context.Context) string {
	if je, ok := port.JobExecutionFromContext(ctx); ok && je != nil {
		return je.JobName
	}
	return "unknown"
}

var _ port.ItemWriter[model.Record] = (*DgraphItemWriter)(nil)
