// Package local provides a local file system implementation of the storage adapter interface.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// Adapter reads files from the local file system.
type Adapter struct {
	baseDir string
}

var _ storage.StorageConnection = (*Adapter)(nil)

// NewAdapter creates a local adapter. When baseDir is set, relative paths are
// resolved under it and may not escape it; otherwise paths are used as given.
func NewAdapter(baseDir string) *Adapter {
	return &Adapter{baseDir: baseDir}
}

// Type returns storage.TypeLocal.
func (a *Adapter) Type() string {
	return storage.TypeLocal
}

// Download opens objectName for reading. bucket, if non-empty, is a
// subdirectory of the base directory.
func (a *Adapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path for download: %w", err)
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file '%s': %w", fullPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory", fullPath)
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", fullPath, err)
	}
	logger.Debugf("Opened local file '%s' (%d bytes).", fullPath, info.Size())
	return file, nil
}

// Close does nothing; the adapter holds no resources.
func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) resolvePath(bucket, objectName string) (string, error) {
	if a.baseDir == "" || filepath.IsAbs(objectName) {
		return filepath.Join(bucket, objectName), nil
	}

	fullPath := filepath.Join(a.baseDir, bucket, objectName)
	absBaseDir, err := filepath.Abs(a.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for base dir '%s': %w", a.baseDir, err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", fullPath, err)
	}
	if absFullPath != absBaseDir && !strings.HasPrefix(absFullPath, absBaseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("resolved path '%s' is outside of base dir '%s'", fullPath, a.baseDir)
	}
	return fullPath, nil
}
