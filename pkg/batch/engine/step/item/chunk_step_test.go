package item_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/graphload/pkg/batch/component/item/processor"
	"github.com/tigerroll/graphload/pkg/batch/component/item/reader"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/engine/step/item"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	testutil "github.com/tigerroll/graphload/pkg/batch/test"
)

type chunkRecorder struct {
	before []int
	after  []error
}

func (c *chunkRecorder) BeforeChunk(_ context.Context, _ *model.JobExecution, b model.Batch) {
	c.before = append(c.before, b.Sequence)
}

func (c *chunkRecorder) AfterChunk(_ context.Context, _ *model.JobExecution, _ model.Batch, _ port.WriteResult, err error) {
	c.after = append(c.after, err)
}

func run(t *testing.T, records, batchSize, limit int, classify processor.Classifier, w *testutil.RecordingWriter) (*testutil.SliceReader, *model.JobExecution, string, error) {
	t.Helper()
	r := testutil.NewSliceReader(testutil.NewTestRecords(records))
	je := testutil.NewTestJobExecution(batchSize, limit)
	step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(classify), w, batchSize, limit)
	summary, err := step.Execute(context.Background(), je)
	return r, je, summary, err
}

func TestScenarioA_ExactMultiple(t *testing.T) {
	w := &testutil.RecordingWriter{}
	r, je, summary, err := run(t, 1000, 250, 1000, nil, w)

	require.NoError(t, err)
	assert.Equal(t, []int{250, 250, 250, 250}, w.Sizes())
	assert.Equal(t, "Stream closed, processed 1000 out of 1000 records.", summary)
	assert.Equal(t, 1000, je.ProcessedCount)
	assert.Equal(t, 4, je.BatchCount)
	assert.Equal(t, 1000, je.UIDCount)
	assert.Equal(t, model.FlowDone, je.FlowState)
	assert.Equal(t, 1, r.Closed)
}

func TestScenarioB_SourceShorterThanLimit(t *testing.T) {
	w := &testutil.RecordingWriter{}
	_, je, summary, err := run(t, 120, 50, 150, nil, w)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 20}, w.Sizes())
	assert.Equal(t, "Stream closed, processed 120 out of 150 records.", summary)
	assert.Equal(t, 120, je.ReadCount)
}

func TestScenarioC_LimitClosesSource(t *testing.T) {
	w := &testutil.RecordingWriter{}
	r, _, summary, err := run(t, 500, 50, 75, nil, w)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 25}, w.Sizes())
	assert.Equal(t, "Stream closed, processed 75 out of 75 records.", summary)
	assert.Equal(t, 75, r.Consumed())
	assert.Equal(t, 1, r.Closed)
	assert.False(t, r.ReadAfter, "no read after the limit closed the source")
}

func TestScenarioD_AllRejected(t *testing.T) {
	w := &testutil.RecordingWriter{}
	_, je, summary, err := run(t, 300, 50, 100, func(model.Record) bool { return false }, w)

	require.NoError(t, err)
	assert.Empty(t, w.Batches)
	assert.Equal(t, "Stream closed, processed 0 out of 100 records.", summary)
	assert.Equal(t, 300, je.FilterCount)
	assert.Equal(t, 300, je.ReadCount)
}

func TestScenarioE_FailedBatchIsAbsorbed(t *testing.T) {
	w := &testutil.RecordingWriter{FailBatches: map[int]bool{2: true}}
	listener := &chunkRecorder{}
	r := testutil.NewSliceReader(testutil.NewTestRecords(200))
	je := testutil.NewTestJobExecution(50, 200)
	step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(nil), w, 50, 200,
		item.WithChunkListeners(listener))

	summary, err := step.Execute(context.Background(), je)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 50, 50}, w.Sizes())
	assert.Equal(t, "Stream closed, processed 200 out of 200 records.", summary)
	assert.Equal(t, 1, je.FailedBatchCount)
	assert.Equal(t, 150, je.UIDCount)
	assert.Len(t, je.Failures, 1)
	assert.Equal(t, []int{1, 2, 3, 4}, listener.before)
	assert.ErrorIs(t, listener.after[1], testutil.ErrWriteFailed)
	assert.NoError(t, listener.after[0])
}

func TestBatchesPreserveSourceOrder(t *testing.T) {
	w := &testutil.RecordingWriter{}
	_, _, _, err := run(t, 7, 3, 100, func(r model.Record) bool {
		id, _ := r.String("id")
		return id != "r2"
	}, w)

	require.NoError(t, err)
	require.Len(t, w.Batches, 2)
	assert.Equal(t, []string{"r1", "r3", "r4"}, testutil.RecordIDs(w.Batches[0]))
	assert.Equal(t, []string{"r5", "r6", "r7"}, testutil.RecordIDs(w.Batches[1]))
}

func TestSourcePausedDuringWrite(t *testing.T) {
	r := testutil.NewSliceReader(testutil.NewTestRecords(30))
	var pausedDuringWrite []bool
	w := &testutil.RecordingWriter{OnWrite: func([]model.Record) {
		pausedDuringWrite = append(pausedDuringWrite, r.IsPaused())
	}}
	je := testutil.NewTestJobExecution(10, 25)
	step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(nil), w, 10, 25)

	_, err := step.Execute(context.Background(), je)
	require.NoError(t, err)

	// two full batches while consuming, the final partial batch after the source closed
	assert.Equal(t, []bool{true, true, false}, pausedDuringWrite)
	assert.Equal(t, 2, r.Pauses)
	assert.Equal(t, 2, r.Resumes)
	assert.False(t, r.IsPaused())
}

func TestProgressReporting(t *testing.T) {
	r := testutil.NewSliceReader(testutil.NewTestRecords(120))
	progress := &testutil.RecordingReporter{}
	je := testutil.NewTestJobExecution(50, 150)
	step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(nil), &testutil.RecordingWriter{}, 50, 150,
		item.WithProgressReporter(progress))

	_, err := step.Execute(context.Background(), je)
	require.NoError(t, err)

	assert.Equal(t, 150, progress.Total)
	assert.Equal(t, 1, progress.Started)
	assert.Equal(t, 1, progress.Stopped)
	assert.Equal(t, []int{50, 100, 120, 120}, progress.Updates)
}

func TestFatalDecodeErrorStopsJob(t *testing.T) {
	lines := testutil.NewJSONLines(5) + "{broken\n" + testutil.NewJSONLines(5)
	src := reader.NewJSONLinesReader(stringSource(lines), "in.jsonl", 0)
	progress := &testutil.RecordingReporter{}
	w := &testutil.RecordingWriter{}
	je := testutil.NewTestJobExecution(2, 100)
	step := item.NewChunkStep("ingest", src, processor.NewClassifierProcessor(nil), w, 2, 100,
		item.WithProgressReporter(progress))

	summary, err := step.Execute(context.Background(), je)

	require.Error(t, err)
	assert.Empty(t, summary)
	var decodeErr *reader.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 6, decodeErr.Line)
	assert.True(t, exception.IsFatal(err))
	assert.Equal(t, 1, progress.Stopped)
	assert.Equal(t, []int{2, 2}, w.Sizes())
}

func TestReadErrorIsFatal(t *testing.T) {
	r := testutil.NewSliceReader(testutil.NewTestRecords(10))
	r.FailAt = 4
	r.Err = errors.New("disk gone")
	je := testutil.NewTestJobExecution(10, 10)
	step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(nil), &testutil.RecordingWriter{}, 10, 10)

	_, err := step.Execute(context.Background(), je)
	assert.ErrorContains(t, err, "disk gone")
	assert.Equal(t, 1, r.Closed)
}

func TestCancelledContextIsFatal(t *testing.T) {
	r := testutil.NewSliceReader(testutil.NewTestRecords(10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	je := testutil.NewTestJobExecution(5, 10)
	step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(nil), &testutil.RecordingWriter{}, 5, 10)

	_, err := step.Execute(ctx, je)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidOptionsRejectedBeforeOpen(t *testing.T) {
	for _, tc := range []struct{ batchSize, limit int }{{0, 10}, {10, 0}, {-1, 5}} {
		r := testutil.NewSliceReader(testutil.NewTestRecords(1))
		step := item.NewChunkStep("ingest", r, processor.NewClassifierProcessor(nil), &testutil.RecordingWriter{}, tc.batchSize, tc.limit)

		_, err := step.Execute(context.Background(), testutil.NewTestJobExecution(tc.batchSize, tc.limit))
		assert.ErrorIs(t, err, item.ErrInvalidOptions)
		assert.False(t, r.Opened)
	}
}

func TestEmptySource(t *testing.T) {
	w := &testutil.RecordingWriter{}
	_, je, summary, err := run(t, 0, 10, 10, nil, w)

	require.NoError(t, err)
	assert.Empty(t, w.Batches)
	assert.Equal(t, "Stream closed, processed 0 out of 10 records.", summary)
	assert.Equal(t, model.FlowDone, je.FlowState)
}

type stringSource string

func (s stringSource) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s))), nil
}
