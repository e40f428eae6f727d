// Package storage defines the storage adapters the record source reads from.
// A path is resolved to an adapter by its scheme: "gs://bucket/object" selects
// Google Cloud Storage and anything else is a local file.
package storage

import (
	"context"
	"io"
)

// StorageConnection is a read-only view of one storage backend.
type StorageConnection interface {
	// Type returns the adapter type ("local", "gcs").
	Type() string
	// Download opens the object for streaming. The caller closes the reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// Close releases clients held by the adapter.
	Close() error
}

// ConnectionGroup is the Fx value group adapters are collected into.
const ConnectionGroup = `group:"storage_connections"`
