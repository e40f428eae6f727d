package reader_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/graphload/pkg/batch/component/item/reader"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

type stringOpener struct {
	data   string
	err    error
	closed int
}

func (o *stringOpener) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &trackingCloser{Reader: strings.NewReader(o.data), owner: o}, nil
}

type trackingCloser struct {
	io.Reader
	owner *stringOpener
}

func (c *trackingCloser) Close() error {
	c.owner.closed++
	return nil
}

func readAll(t *testing.T, r *reader.JSONLinesReader) ([]model.Record, error) {
	t.Helper()
	var out []model.Record
	for {
		rec, err := r.Read(context.Background())
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func TestRead_DecodesObjectsAndSkipsBlankLines(t *testing.T) {
	opener := &stringOpener{data: "{\"id\":\"a\",\"score\":12345678901234567890}\n\n   \n{\"id\":\"b\"}"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
	require.NoError(t, r.Open(context.Background()))

	records, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0]["id"])
	assert.Equal(t, json.Number("12345678901234567890"), records[0]["score"])
	assert.Equal(t, "b", records[1]["id"])
	assert.Equal(t, 4, r.LinesRead())
}

func TestRead_MalformedLineIsFatal(t *testing.T) {
	opener := &stringOpener{data: "{\"id\":\"a\"}\n{not json}\n{\"id\":\"c\"}\n"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
	require.NoError(t, r.Open(context.Background()))

	records, err := readAll(t, r)
	require.Error(t, err)
	assert.Len(t, records, 1)

	var decodeErr *reader.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 2, decodeErr.Line)
}

func TestRead_NonObjectLineIsFatal(t *testing.T) {
	for _, line := range []string{"[1,2]", "42", "\"text\"", "null", "{\"a\":1} {\"b\":2}"} {
		opener := &stringOpener{data: line + "\n"}
		r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
		require.NoError(t, r.Open(context.Background()))

		_, err := r.Read(context.Background())
		var decodeErr *reader.DecodeError
		assert.True(t, errors.As(err, &decodeErr), "line %q", line)
	}
}

func TestRead_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	opener := &stringOpener{data: "{\"body\":\"" + long + "\"}\n"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
	require.NoError(t, r.Open(context.Background()))

	rec, err := r.Read(context.Background())
	require.NoError(t, err)
	body, _ := rec.String("body")
	assert.Len(t, body, 1<<20)
}

func TestPauseResume(t *testing.T) {
	opener := &stringOpener{data: "{\"id\":\"a\"}\n{\"id\":\"b\"}\n"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
	require.NoError(t, r.Open(context.Background()))

	_, err := r.Read(context.Background())
	require.NoError(t, err)

	r.Pause()
	_, err = r.Read(context.Background())
	assert.ErrorIs(t, err, port.ErrSourcePaused)

	r.Resume()
	rec, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", rec["id"])
}

func TestClose_IdempotentAndStopsReading(t *testing.T) {
	opener := &stringOpener{data: "{\"id\":\"a\"}\n{\"id\":\"b\"}\n"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
	require.NoError(t, r.Open(context.Background()))

	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, 1, opener.closed)

	_, err := r.Read(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestOpen_FailureIsReported(t *testing.T) {
	r := reader.NewJSONLinesReader(&stringOpener{err: os.ErrNotExist}, "missing", 0)
	err := r.Open(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead_BeforeOpen(t *testing.T) {
	r := reader.NewJSONLinesReader(&stringOpener{}, "in.jsonl", 0)
	_, err := r.Read(context.Background())
	assert.ErrorContains(t, err, "reader not opened")
}

func TestRead_CancelledContext(t *testing.T) {
	opener := &stringOpener{data: "{\"id\":\"a\"}\n"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 0)
	require.NoError(t, r.Open(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_RateLimited(t *testing.T) {
	opener := &stringOpener{data: "{\"id\":\"a\"}\n{\"id\":\"b\"}\n{\"id\":\"c\"}\n"}
	r := reader.NewJSONLinesReader(opener, "in.jsonl", 20)
	require.NoError(t, r.Open(context.Background()))

	start := time.Now()
	records, err := readAll(t, r)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	// burst of one, then 50ms per record
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRead_LocalFileThroughResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RS_sample")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"a\"}\n{\"id\":\"b\"}\n"), 0o644))

	r := reader.NewJSONLinesReader(storage.NewResolver(local.NewAdapter("")), path, 0)
	require.NoError(t, r.Open(context.Background()))
	defer r.Close(context.Background())

	records, err := readAll(t, r)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
