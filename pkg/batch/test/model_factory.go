package test

import (
	"fmt"

	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// NewTestRecords returns n records with ids "r1".."rn".
func NewTestRecords(n int) []model.Record {
	records := make([]model.Record, n)
	for i := range records {
		records[i] = model.Record{"id": fmt.Sprintf("r%d", i+1)}
	}
	return records
}

// NewJSONLines renders records as newline separated JSON objects with an "id" field.
func NewJSONLines(n int) string {
	var out []byte
	for i := 1; i <= n; i++ {
		out = fmt.Appendf(out, "{\"id\":\"r%d\",\"seq\":%d}\n", i, i)
	}
	return string(out)
}

// NewTestJobExecution creates a started JobExecution for testing.
func NewTestJobExecution(batchSize, limit int) *model.JobExecution {
	je := model.NewJobExecution("test-job", batchSize, limit, 0, "test.json")
	je.MarkAsStarted()
	return je
}

// RecordIDs extracts the "id" field of every record.
func RecordIDs(records []model.Record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		id, _ := r.String("id")
		ids = append(ids, id)
	}
	return ids
}
