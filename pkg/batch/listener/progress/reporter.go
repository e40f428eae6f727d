// Package progress reports ingestion progress against the configured record limit.
package progress

import (
	"io"
	"sync"
	"time"

	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
)

// BarReporter draws a terminal progress bar: percentage, elapsed time,
// estimated time left and current/total records.
type BarReporter struct {
	out io.Writer

	mu      sync.Mutex
	bar     *pb.ProgressBar
	stopped bool
}

// NewBarReporter creates a reporter writing to out.
func NewBarReporter(out io.Writer) *BarReporter {
	return &BarReporter{out: out}
}

// Start creates and starts the bar. Only the first call has an effect.
func (r *BarReporter) Start(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil || r.stopped {
		return
	}
	bar := pb.New(total)
	bar.Output = r.out
	bar.ShowCounters = true
	bar.ShowPercent = true
	bar.ShowTimeLeft = true
	bar.ShowElapsedTime = true
	bar.ShowSpeed = false
	bar.Prefix("Ingesting ")
	bar.Postfix(" records")
	bar.SetRefreshRate(200 * time.Millisecond)
	bar.Start()
	r.bar = bar
}

// Update moves the bar to current. It is ignored before Start and after Stop.
func (r *BarReporter) Update(current int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil || r.stopped {
		return
	}
	r.bar.Set(current)
}

// Stop draws the final state and stops refreshing. Repeated calls do nothing.
func (r *BarReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.bar != nil {
		r.bar.Finish()
	}
}

// NoOpReporter discards progress.
type NoOpReporter struct{}

// NewNoOpReporter returns a reporter that does nothing.
func NewNoOpReporter() port.ProgressReporter {
	return NoOpReporter{}
}

func (NoOpReporter) Start(int)  {}
func (NoOpReporter) Update(int) {}
func (NoOpReporter) Stop()      {}

var (
	_ port.ProgressReporter = (*BarReporter)(nil)
	_ port.ProgressReporter = NoOpReporter{}
)
