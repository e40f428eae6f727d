package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	infra "github.com/tigerroll/graphload/pkg/batch/infrastructure/metrics"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	r := infra.NewPrometheusRecorder()
	ctx := context.Background()

	r.RecordRecordRead(ctx, "graphload")
	r.RecordRecordRead(ctx, "graphload")
	r.RecordRecordFiltered(ctx, "graphload")
	r.RecordBatchCommit(ctx, "graphload", 50)
	r.RecordBatchCommit(ctx, "graphload", 20)
	r.RecordBatchFailure(ctx, "graphload", "temporary")
	r.RecordDuration(ctx, "mutate", 120*time.Millisecond, nil)

	count, err := testutil.GatherAndCount(r.GetRegistry(),
		"graphload_records_read_total",
		"graphload_records_filtered_total",
		"graphload_batch_commit_total",
		"graphload_batch_failure_total",
		"graphload_records_written_total",
		"graphload_operation_duration_seconds",
	)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	je := model.NewJobExecution("graphload", 50, 100, 0, "in.json")
	r.RecordJobStart(ctx, je)
	je.MarkAsStarted()
	je.MarkAsCompleted()
	r.RecordJobEnd(ctx, je)

	count, err = testutil.GatherAndCount(r.GetRegistry(), "graphload_job_status_total", "graphload_job_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "STARTING and COMPLETED status series plus one duration series")
}

func TestOpenTelemetryRecorder_Exports(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r, err := infra.NewOpenTelemetryRecorder(mp)
	require.NoError(t, err)

	ctx := context.Background()
	r.RecordRecordRead(ctx, "graphload")
	r.RecordBatchCommit(ctx, "graphload", 25)
	r.RecordBatchRetry(ctx, "graphload", "temporary")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	assert.True(t, names["graphload.records.read"])
	assert.True(t, names["graphload.records.written"])
	assert.True(t, names["graphload.batch.retries"])
}

func TestOpenTelemetryTracer_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := infra.NewOpenTelemetryTracer(tp)

	je := model.NewJobExecution("graphload", 10, 10, 0, "in.json")
	ctx, endJob := tracer.StartJobSpan(context.Background(), je)
	bctx, endBatch := tracer.StartBatchSpan(ctx, je, model.Batch{Sequence: 1, Records: []model.Record{{"id": "a"}}})
	tracer.RecordError(bctx, "writer", errors.New("unavailable"))
	tracer.RecordEvent(bctx, "retry", map[string]interface{}{"attempt": 2, "reason": "temporary"})
	endBatch()
	je.MarkAsStarted()
	je.MarkAsFailed(errors.New("boom"))
	endJob()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "batch 1", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 2, "error event and retry event")
	assert.Equal(t, "job graphload", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}
