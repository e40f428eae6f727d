package test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

// SliceReader is an in-memory port.ItemReader that enforces pause semantics
// and records how the engine drives it.
type SliceReader struct {
	Items []model.Record
	// FailAt makes the Nth Read (1-based) return Err.
	FailAt int
	Err    error

	mu        sync.Mutex
	pos       int
	reads     int
	paused    bool
	Opened    bool
	Closed    int
	Pauses    int
	Resumes   int
	ReadAfter bool // a Read happened after Close
}

// NewSliceReader returns a reader over records.
func NewSliceReader(records []model.Record) *SliceReader {
	return &SliceReader{Items: records}
}

func (r *SliceReader) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Opened = true
	return nil
}

func (r *SliceReader) Read(ctx context.Context) (model.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Closed > 0 {
		r.ReadAfter = true
		return nil, io.EOF
	}
	if r.paused {
		return nil, port.ErrSourcePaused
	}
	r.reads++
	if r.FailAt > 0 && r.reads == r.FailAt {
		return nil, r.Err
	}
	if r.pos >= len(r.Items) {
		return nil, io.EOF
	}
	rec := r.Items[r.pos]
	r.pos++
	return rec, nil
}

func (r *SliceReader) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed++
	return nil
}

func (r *SliceReader) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	r.Pauses++
}

func (r *SliceReader) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	r.Resumes++
}

// Consumed returns how many records have been handed out.
func (r *SliceReader) Consumed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// IsPaused reports whether the reader is currently paused.
func (r *SliceReader) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// ErrWriteFailed is returned by RecordingWriter for failing batches.
var ErrWriteFailed = errors.New("write failed")

// RecordingWriter is a port.ItemWriter that remembers every batch it was given.
type RecordingWriter struct {
	// FailBatches lists 1-based batch numbers that fail.
	FailBatches map[int]bool
	// OnWrite, if set, runs inside Write before the result is decided.
	OnWrite func(items []model.Record)

	mu      sync.Mutex
	Batches [][]model.Record
}

func (w *RecordingWriter) Open(ctx context.Context) error  { return nil }
func (w *RecordingWriter) Close(ctx context.Context) error { return nil }

func (w *RecordingWriter) Write(ctx context.Context, items []model.Record) (port.WriteResult, error) {
	if w.OnWrite != nil {
		w.OnWrite(items)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	copied := append([]model.Record(nil), items...)
	w.Batches = append(w.Batches, copied)
	if w.FailBatches[len(w.Batches)] {
		return port.WriteResult{}, ErrWriteFailed
	}
	uids := make([]string, len(items))
	for i := range items {
		uids[i] = fmt.Sprintf("0x%x", i+1)
	}
	return port.WriteResult{Written: len(items), UIDs: uids}, nil
}

// Sizes returns the length of every recorded batch.
func (w *RecordingWriter) Sizes() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	sizes := make([]int, len(w.Batches))
	for i, b := range w.Batches {
		sizes[i] = len(b)
	}
	return sizes
}

// RecordingReporter is a port.ProgressReporter that keeps every update.
type RecordingReporter struct {
	mu      sync.Mutex
	Total   int
	Updates []int
	Started int
	Stopped int
}

func (p *RecordingReporter) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Total = total
	p.Started++
}

func (p *RecordingReporter) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Updates = append(p.Updates, current)
}

func (p *RecordingReporter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Stopped++
}

var (
	_ port.ItemReader[model.Record] = (*SliceReader)(nil)
	_ port.ItemWriter[model.Record] = (*RecordingWriter)(nil)
	_ port.ProgressReporter         = (*RecordingReporter)(nil)
)
