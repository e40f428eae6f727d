package model

// Batch is an ordered group of admitted records written in one transaction.
type Batch struct {
	// Sequence is the 1-based position of the batch within its job.
	Sequence int
	Records  []Record
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// FlowState is the phase of the ingestion flow controller.
type FlowState string

const (
	// FlowConsuming reads and classifies records into the buffer.
	FlowConsuming FlowState = "CONSUMING"
	// FlowFlushing writes a full buffer while the source is paused.
	FlowFlushing FlowState = "FLUSHING"
	// FlowDraining writes the final partial buffer after the source ended.
	FlowDraining FlowState = "DRAINING"
	// FlowDone means the stream is closed and the summary is available.
	FlowDone FlowState = "DONE"
)

// ProgressSnapshot is what a progress reporter displays.
type ProgressSnapshot struct {
	Current int
	Total   int
}

// Ratio returns Current/Total clamped to [0, 1].
func (p ProgressSnapshot) Ratio() float64 {
	if p.Total <= 0 {
		return 0
	}
	r := float64(p.Current) / float64(p.Total)
	if r > 1 {
		return 1
	}
	return r
}
