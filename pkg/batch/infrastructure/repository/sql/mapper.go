package sql

import (
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

func fromDomainJobExecution(je *model.JobExecution) *JobExecutionEntity {
	if je == nil {
		return nil
	}
	return &JobExecutionEntity{
		ID:               je.ID,
		JobName:          je.JobName,
		Status:           string(je.Status),
		StartTime:        je.StartTime,
		EndTime:          je.EndTime,
		BatchSize:        je.BatchSize,
		RecordLimit:      je.Limit,
		RecordOffset:     je.Offset,
		Path:             je.Path,
		ReadCount:        je.ReadCount,
		ProcessedCount:   je.ProcessedCount,
		FilterCount:      je.FilterCount,
		BatchCount:       je.BatchCount,
		FailedBatchCount: je.FailedBatchCount,
		UIDCount:         je.UIDCount,
		FlowState:        string(je.FlowState),
		ExitMessage:      je.ExitMessage,
		Failures:         je.Failures,
		LastUpdated:      je.LastUpdated,
	}
}

func toDomainJobExecution(entity *JobExecutionEntity) *model.JobExecution {
	if entity == nil {
		return nil
	}
	failures := entity.Failures
	if failures == nil {
		failures = model.FailureList{}
	}
	return &model.JobExecution{
		ID:               entity.ID,
		JobName:          entity.JobName,
		Status:           model.JobStatus(entity.Status),
		StartTime:        entity.StartTime,
		EndTime:          entity.EndTime,
		BatchSize:        entity.BatchSize,
		Limit:            entity.RecordLimit,
		Offset:           entity.RecordOffset,
		Path:             entity.Path,
		ReadCount:        entity.ReadCount,
		ProcessedCount:   entity.ProcessedCount,
		FilterCount:      entity.FilterCount,
		BatchCount:       entity.BatchCount,
		FailedBatchCount: entity.FailedBatchCount,
		UIDCount:         entity.UIDCount,
		FlowState:        model.FlowState(entity.FlowState),
		ExitMessage:      entity.ExitMessage,
		Failures:         failures,
		LastUpdated:      entity.LastUpdated,
	}
}
