package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	a := NewAttachment(path)
	assert.Equal(t, "fetched", a.State())

	a.MarkDelivered()
	assert.Equal(t, "delivered", a.State())

	require.NoError(t, a.Remove())
	assert.Equal(t, "deleted", a.State())
	assert.NoFileExists(t, path)
}

func TestAttachmentRemoveBeforeDelivery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	a := NewAttachment(path)
	err := a.Remove()
	assert.ErrorContains(t, err, "state fetched")
	assert.FileExists(t, path)
}

func TestAttachmentRemoveMissingFile(t *testing.T) {
	a := NewAttachment(filepath.Join(t.TempDir(), "gone.bin"))
	a.MarkDelivered()
	assert.Error(t, a.Remove())
}
