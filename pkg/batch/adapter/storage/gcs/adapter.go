// Package gcs reads source objects from Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"sync"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// Adapter streams objects from GCS. The client is created on first use so
// runs that only read local files never touch Google credentials.
type Adapter struct {
	opts []option.ClientOption

	mu     sync.Mutex
	client *gcstorage.Client
}

var _ storage.StorageConnection = (*Adapter)(nil)

// NewAdapter creates a GCS adapter. An empty CredentialsFile uses
// application default credentials.
func NewAdapter(cfg *config.GCSConfig) *Adapter {
	var opts []option.ClientOption
	if cfg != nil && cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return &Adapter{opts: opts}
}

// Type returns storage.TypeGCS.
func (a *Adapter) Type() string {
	return storage.TypeGCS
}

// Download opens a reader on gs://bucket/objectName.
func (a *Adapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	client, err := a.getClient(ctx)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, objectName, err)
	}
	logger.Debugf("Opened gs://%s/%s (%d bytes).", bucket, objectName, r.Attrs.Size)
	return r, nil
}

// Close closes the underlying client if one was created.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

func (a *Adapter) getClient(ctx context.Context) (*gcstorage.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	client, err := gcstorage.NewClient(ctx, a.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	a.client = client
	return client, nil
}
