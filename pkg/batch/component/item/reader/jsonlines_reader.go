// Package reader provides the record source: a line-delimited JSON reader
// over local files or Cloud Storage objects.
package reader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/time/rate"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/support/util/exception"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

const readBufferSize = 64 * 1024

// SourceOpener opens the stream behind a path. *storage.Resolver implements it.
type SourceOpener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// JSONLinesReader reads one JSON object per line. Blank lines are skipped;
// any other line that is not an object stops the reader with a *DecodeError.
type JSONLinesReader struct {
	opener  SourceOpener
	path    string
	limiter *rate.Limiter

	mu     sync.Mutex
	rc     io.ReadCloser
	br     *bufio.Reader
	line   int
	paused bool
	closed bool
	eof    bool
}

// NewJSONLinesReader creates a reader for path. recordsPerSecond > 0 throttles Read.
func NewJSONLinesReader(opener SourceOpener, path string, recordsPerSecond float64) *JSONLinesReader {
	r := &JSONLinesReader{opener: opener, path: path}
	if recordsPerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(recordsPerSecond), 1)
	}
	return r
}

// Open opens the underlying stream.
func (r *JSONLinesReader) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rc != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("JSONLinesReader '%s' is already open", r.path), nil, false, false)
	}
	rc, err := r.opener.Open(ctx, r.path)
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("Failed to open source '%s'", r.path), err, false, false)
	}
	r.rc = rc
	r.br = bufio.NewReaderSize(rc, readBufferSize)
	logger.Infof("JSONLinesReader: reading from '%s'.", r.path)
	return nil
}

// Read returns the next record or io.EOF.
func (r *JSONLinesReader) Read(ctx context.Context) (model.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return nil, port.ErrSourcePaused
	}
	if r.closed || r.eof {
		return nil, io.EOF
	}
	if r.br == nil {
		return nil, exception.NewBatchError("reader", fmt.Sprintf("JSONLinesReader '%s': reader not opened", r.path), errors.New("reader not initialized"), false, false)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for {
		raw, readErr := r.br.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, exception.NewBatchError("reader", fmt.Sprintf("Failed to read line %d of '%s'", r.line+1, r.path), readErr, false, false)
		}
		if len(raw) > 0 {
			r.line++
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) > 0 {
				rec, err := DecodeLine(trimmed)
				if err != nil {
					return nil, &DecodeError{Line: r.line, Err: err}
				}
				if err := r.wait(ctx); err != nil {
					return nil, err
				}
				return rec, nil
			}
		}
		if readErr == io.EOF {
			r.eof = true
			logger.Debugf("JSONLinesReader: end of '%s' after %d lines.", r.path, r.line)
			return nil, io.EOF
		}
	}
}

func (r *JSONLinesReader) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// Close releases the stream. Subsequent Reads return io.EOF.
func (r *JSONLinesReader) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.rc == nil {
		return nil
	}
	err := r.rc.Close()
	r.rc = nil
	r.br = nil
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("Failed to close source '%s'", r.path), err, false, false)
	}
	logger.Debugf("JSONLinesReader: closed '%s' after %d lines.", r.path, r.line)
	return nil
}

// Pause makes Read fail with port.ErrSourcePaused until Resume.
func (r *JSONLinesReader) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

// Resume lifts a Pause.
func (r *JSONLinesReader) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
}

// LinesRead returns the number of lines consumed so far, blank lines included.
func (r *JSONLinesReader) LinesRead() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.line
}

var _ port.ItemReader[model.Record] = (*JSONLinesReader)(nil)
