package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

const (
	// TypeLocal is the adapter type for local files.
	TypeLocal = "local"
	// TypeGCS is the adapter type for Google Cloud Storage.
	TypeGCS = "gcs"

	gcsScheme = "gs://"
)

// Location is a parsed input path.
type Location struct {
	Type   string
	Bucket string
	Object string
}

// String renders the location back into path form.
func (l Location) String() string {
	if l.Type == TypeGCS {
		return gcsScheme + l.Bucket + "/" + l.Object
	}
	return l.Object
}

// ParseLocation splits path into adapter type, bucket and object.
// Local paths have no bucket; the object is the path itself.
func ParseLocation(path string) (Location, error) {
	if path == "" {
		return Location{}, fmt.Errorf("empty path")
	}
	if !strings.HasPrefix(path, gcsScheme) {
		return Location{Type: TypeLocal, Object: path}, nil
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(path, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return Location{}, fmt.Errorf("invalid object path %q, expected gs://bucket/object", path)
	}
	return Location{Type: TypeGCS, Bucket: bucket, Object: object}, nil
}

// Resolver opens paths through the adapter registered for their type.
type Resolver struct {
	connections map[string]StorageConnection
}

// NewResolver indexes connections by Type. A later connection of the same
// type replaces an earlier one.
func NewResolver(connections ...StorageConnection) *Resolver {
	r := &Resolver{connections: make(map[string]StorageConnection, len(connections))}
	for _, c := range connections {
		if c == nil {
			continue
		}
		if _, dup := r.connections[c.Type()]; dup {
			logger.Warnf("Storage adapter for type '%s' registered twice. Overwriting.", c.Type())
		}
		r.connections[c.Type()] = c
	}
	return r
}

// Open parses path and streams it from the matching adapter.
func (r *Resolver) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	loc, err := ParseLocation(path)
	if err != nil {
		return nil, err
	}
	conn, ok := r.connections[loc.Type]
	if !ok {
		return nil, fmt.Errorf("no storage adapter registered for type '%s' (path %s)", loc.Type, path)
	}
	logger.Debugf("Opening %s via %s adapter", loc, loc.Type)
	return conn.Download(ctx, loc.Bucket, loc.Object)
}

// Close closes every adapter and reports all failures together.
func (r *Resolver) Close() error {
	var result *multierror.Error
	for typ, c := range r.connections {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing %s storage adapter: %w", typ, err))
		}
	}
	return result.ErrorOrNil()
}
