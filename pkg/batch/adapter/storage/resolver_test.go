package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/adapter/storage/local"
)

type stubConnection struct {
	typ      string
	bucket   string
	object   string
	closeErr error
	closed   bool
}

func (s *stubConnection) Type() string { return s.typ }

func (s *stubConnection) Download(_ context.Context, bucket, objectName string) (io.ReadCloser, error) {
	s.bucket, s.object = bucket, objectName
	return io.NopCloser(strings.NewReader("{}\n")), nil
}

func (s *stubConnection) Close() error {
	s.closed = true
	return s.closeErr
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    storage.Location
		wantErr bool
	}{
		{name: "relative local", path: "./data/RS_2018-02-01", want: storage.Location{Type: storage.TypeLocal, Object: "./data/RS_2018-02-01"}},
		{name: "absolute local", path: "/tmp/in.jsonl", want: storage.Location{Type: storage.TypeLocal, Object: "/tmp/in.jsonl"}},
		{name: "gcs object", path: "gs://dumps/2018/RS_2018-02-01", want: storage.Location{Type: storage.TypeGCS, Bucket: "dumps", Object: "2018/RS_2018-02-01"}},
		{name: "gcs bucket only", path: "gs://dumps", wantErr: true},
		{name: "gcs empty object", path: "gs://dumps/", wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ParseLocation(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.path, got.String())
		})
	}
}

func TestResolver_OpenDispatchesByType(t *testing.T) {
	gcs := &stubConnection{typ: storage.TypeGCS}
	r := storage.NewResolver(local.NewAdapter(""), gcs)

	rc, err := r.Open(context.Background(), "gs://bucket/path/to/object")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "bucket", gcs.bucket)
	assert.Equal(t, "path/to/object", gcs.object)
}

func TestResolver_OpenLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"a\"}\n"), 0o644))

	r := storage.NewResolver(local.NewAdapter(""))
	rc, err := r.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"a\"}\n", string(data))
}

func TestResolver_OpenUnregisteredType(t *testing.T) {
	r := storage.NewResolver(local.NewAdapter(""))
	_, err := r.Open(context.Background(), "gs://bucket/object")
	assert.ErrorContains(t, err, "no storage adapter registered for type 'gcs'")
}

func TestResolver_CloseCollectsErrors(t *testing.T) {
	a := &stubConnection{typ: "a", closeErr: errors.New("boom a")}
	b := &stubConnection{typ: "b", closeErr: errors.New("boom b")}
	c := &stubConnection{typ: "c"}
	r := storage.NewResolver(a, b, c)

	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom a")
	assert.Contains(t, err.Error(), "boom b")
	assert.True(t, a.closed && b.closed && c.closed)
}
