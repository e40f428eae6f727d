package progress_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/graphload/pkg/batch/listener/progress"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBarReporter_Lifecycle(t *testing.T) {
	out := &safeBuffer{}
	r := progress.NewBarReporter(out)

	r.Update(5) // before Start: ignored
	r.Start(100)
	r.Update(40)
	r.Stop()
	r.Stop()
	r.Update(90) // after Stop: ignored

	s := out.String()
	assert.Contains(t, s, "40 / 100")
	assert.NotContains(t, s, "90 / 100")
}

func TestBarReporter_StopWithoutStart(t *testing.T) {
	out := &safeBuffer{}
	r := progress.NewBarReporter(out)
	assert.NotPanics(t, func() {
		r.Stop()
		r.Start(10)
		r.Update(1)
		r.Stop()
	})
	assert.Empty(t, out.String())
}

func TestNoOpReporter(t *testing.T) {
	r := progress.NewNoOpReporter()
	assert.NotPanics(t, func() {
		r.Start(10)
		r.Update(3)
		r.Stop()
		r.Stop()
	})
}
