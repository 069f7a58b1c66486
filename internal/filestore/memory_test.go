package filestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUploadDownload(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Upload(ctx, "uploads", "report.pdf", []byte("hello")))

	content, err := store.Download(ctx, "uploads", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)

	_, err = store.Download(ctx, "uploads", "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUploadRejectsEmptyContent(t *testing.T) {
	store := NewMemory()
	assert.Error(t, store.Upload(context.Background(), "uploads", "empty.txt", nil))
}

func TestMemoryListSortedByName(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Upload(ctx, "uploads", "b.txt", []byte("bb")))
	require.NoError(t, store.Upload(ctx, "uploads", "a.txt", []byte("a")))

	files, err := store.List(ctx, "uploads")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].FileName)
	assert.Equal(t, int64(1), files[0].FileSize)
	assert.Equal(t, "b.txt", files[1].FileName)

	// Directories are isolated.
	files, err = store.List(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Upload(ctx, "uploads", "a.txt", []byte("a")))

	deleted, err := store.Delete(ctx, "uploads", "a.txt")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "uploads", "a.txt")
	require.NoError(t, err)
	assert.False(t, deleted, "deleting an absent file reports not deleted")
}
