package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

func TestRecordAccessors(t *testing.T) {
	rec := model.Record{
		"id":           "7uhn1x",
		"domain":       "",
		"over_18":      false,
		"num_comments": json.Number("12"),
		"score":        3.0,
		"link_id":      nil,
	}

	id, ok := rec.String("id")
	assert.True(t, ok)
	assert.Equal(t, "7uhn1x", id)

	_, ok = rec.String("domain")
	assert.False(t, ok, "empty string counts as unset")

	nsfw, ok := rec.Bool("over_18")
	assert.True(t, ok)
	assert.False(t, nsfw)

	n, ok := rec.Float("num_comments")
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	s, ok := rec.Float("score")
	assert.True(t, ok)
	assert.Equal(t, 3.0, s)

	half, ok := model.Record{"v": json.Number("0.5")}.Float("v")
	assert.True(t, ok)
	assert.Equal(t, 0.5, half, "fractions are not truncated")

	_, ok = model.Record{"v": "many"}.Float("v")
	assert.False(t, ok)

	assert.False(t, rec.Has("link_id"), "null is not present")
	assert.False(t, rec.Has("missing"))
	assert.True(t, rec.Has("id"))
}

func TestJobExecutionLifecycle(t *testing.T) {
	je := model.NewJobExecution("graphload", 250, 1000, 0, "input.json")
	require.NotEmpty(t, je.ID)
	assert.Equal(t, model.BatchStatusStarting, je.Status)

	je.MarkAsStarted()
	je.ProcessedCount = 120
	je.MarkAsCompleted()

	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.FlowDone, je.FlowState)
	assert.NotNil(t, je.EndTime)
	assert.Equal(t, "Stream closed, processed 120 out of 1000 records.", je.ExitMessage)
	assert.Error(t, je.TransitionTo(model.BatchStatusStarted))
}

func TestJobExecutionFailure(t *testing.T) {
	je := model.NewJobExecution("graphload", 10, 10, 0, "input.json")
	je.MarkAsStarted()
	cause := errors.New("line 3: invalid character")
	je.MarkAsFailed(cause)
	je.AddFailureException(cause)

	assert.Equal(t, model.BatchStatusFailed, je.Status)
	assert.Equal(t, model.FailureList{"line 3: invalid character"}, je.Failures)
}

func TestFailureListScan(t *testing.T) {
	var fl model.FailureList
	require.NoError(t, fl.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, model.FailureList{"a", "b"}, fl)

	require.NoError(t, fl.Scan(nil))
	assert.Empty(t, fl)

	v, err := model.FailureList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	assert.Error(t, fl.Scan(42))
}

func TestProgressSnapshotRatio(t *testing.T) {
	assert.Equal(t, 0.5, model.ProgressSnapshot{Current: 50, Total: 100}.Ratio())
	assert.Equal(t, 1.0, model.ProgressSnapshot{Current: 150, Total: 100}.Ratio())
	assert.Equal(t, 0.0, model.ProgressSnapshot{Current: 1}.Ratio())
}
