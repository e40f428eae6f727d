package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_DownloadWithBaseDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "dumps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "dumps", "RS"), []byte("line\n"), 0o644))

	a := NewAdapter(base)
	rc, err := a.Download(context.Background(), "dumps", "RS")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestAdapter_DownloadRejectsEscape(t *testing.T) {
	a := NewAdapter(t.TempDir())
	_, err := a.Download(context.Background(), "", "../outside")
	assert.ErrorContains(t, err, "outside of base dir")
}

func TestAdapter_DownloadMissingFile(t *testing.T) {
	a := NewAdapter("")
	_, err := a.Download(context.Background(), "", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to stat file")
}

func TestAdapter_DownloadDirectory(t *testing.T) {
	a := NewAdapter("")
	_, err := a.Download(context.Background(), "", t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestAdapter_Type(t *testing.T) {
	assert.Equal(t, "local", NewAdapter("").Type())
	assert.NoError(t, NewAdapter("").Close())
}
