// Package logging provides listeners that log job, batch and record events.
package logging

import (
	"context"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// --- Job Execution Listener ---

type LoggingJobListener struct{}

func NewLoggingJobListener() port.JobExecutionListener {
	return &LoggingJobListener{}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	logger.Infof("JobExecutionListener: BeforeJob - JobName: %s, ID: %s, Path: %s, BatchSize: %d, Limit: %d",
		jobExecution.JobName, jobExecution.ID, jobExecution.Path, jobExecution.BatchSize, jobExecution.Limit)
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	logger.Infof("JobExecutionListener: AfterJob - JobName: %s, Status: %s, Read: %d, Processed: %d, Filtered: %d, Batches: %d (failed %d), Duration: %s",
		jobExecution.JobName, jobExecution.Status, jobExecution.ReadCount, jobExecution.ProcessedCount, jobExecution.FilterCount,
		jobExecution.BatchCount, jobExecution.FailedBatchCount, jobExecution.Duration())
}

var _ port.JobExecutionListener = (*LoggingJobListener)(nil)

// --- Chunk Listener ---

type LoggingChunkListener struct{}

func NewLoggingChunkListener() port.ChunkListener {
	return &LoggingChunkListener{}
}

func (l *LoggingChunkListener) BeforeChunk(ctx context.Context, jobExecution *model.JobExecution, batch model.Batch) {
	logger.Debugf("ChunkListener: BeforeChunk - Job: %s, Batch: %d, Records: %d", jobExecution.JobName, batch.Sequence, batch.Len())
}

func (l *LoggingChunkListener) AfterChunk(ctx context.Context, jobExecution *model.JobExecution, batch model.Batch, result port.WriteResult, err error) {
	if err != nil {
		logger.Warnf("ChunkListener: AfterChunk - Job: %s, Batch: %d failed: %v", jobExecution.JobName, batch.Sequence, err)
		return
	}
	logger.Debugf("ChunkListener: AfterChunk - Job: %s, Batch: %d, Written: %d, UIDs: %d, Processed so far: %d",
		jobExecution.JobName, batch.Sequence, result.Written, len(result.UIDs), jobExecution.ProcessedCount)
}

var _ port.ChunkListener = (*LoggingChunkListener)(nil)

// --- Item Read Listener ---

type LoggingItemReadListener struct{}

func NewLoggingItemReadListener() port.ItemReadListener {
	return &LoggingItemReadListener{}
}

func (l *LoggingItemReadListener) AfterRead(ctx context.Context, item model.Record) {}

func (l *LoggingItemReadListener) OnReadError(ctx context.Context, err error) {
	logger.Errorf("ItemReadListener: OnReadError - %v", err)
}

var _ port.ItemReadListener = (*LoggingItemReadListener)(nil)

// --- Item Process Listener ---

type LoggingItemProcessListener struct{}

func NewLoggingItemProcessListener() port.ItemProcessListener {
	return &LoggingItemProcessListener{}
}

func (l *LoggingItemProcessListener) OnFilter(ctx context.Context, item model.Record) {
	logger.Debugf("ItemProcessListener: OnFilter - id: %v", item["id"])
}

var _ port.ItemProcessListener = (*LoggingItemProcessListener)(nil)
