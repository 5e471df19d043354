package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoalbum/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, LocalPublicPrefix)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "1700000000000-abcd1234.jpg", strings.NewReader("jpeg-bytes"), 10, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-abcd1234.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000-abcd1234.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "1700000000000-abcd1234.jpg"))
	_, err = os.Stat(filepath.Join(dir, "1700000000000-abcd1234.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "1700000000000-abcd1234.jpg"), "deleting twice is fine")
}

func TestLocalStore_SizeMismatchLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, LocalPublicPrefix)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "short.png", strings.NewReader("abc"), 10, "image/png")
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), LocalPublicPrefix)
	require.NoError(t, err)

	for _, key := range []string{"", "../evil.jpg", "nested/file.jpg", ".hidden"} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.Error(t, err, key)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	url, err := store.Put(context.Background(), "a.gif", strings.NewReader("gif"), 3, "image/gif")
	require.NoError(t, err)
	assert.Equal(t, "/memory/a.gif", url)

	data, err := store.Get("a.gif")
	require.NoError(t, err)
	assert.Equal(t, "gif", string(data))

	require.NoError(t, store.Delete(context.Background(), "a.gif"))
	_, err = store.Get("a.gif")
	assert.ErrorIs(t, err, ErrNotFound)

	store.FailPut = true
	_, err = store.Put(context.Background(), "b.gif", strings.NewReader("gif"), 3, "")
	assert.Error(t, err)
}

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	store, err := NewStoreFromConfig(ctx, &config.Config{UploadBackend: "local", UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", store.Name())

	_, err = NewStoreFromConfig(ctx, &config.Config{UploadBackend: "local"})
	assert.Error(t, err)

	_, err = NewStoreFromConfig(ctx, &config.Config{UploadBackend: "s3"})
	assert.Error(t, err, "bucket is required")

	store, err = NewStoreFromConfig(ctx, &config.Config{
		UploadBackend:   "s3",
		S3Bucket:        "photos",
		S3Region:        "us-east-1",
		S3Endpoint:      "http://localhost:9000",
		S3AccessKey:     "minio",
		S3SecretKey:     "minio123",
		S3PublicBaseURL: "https://cdn.example.com/photos/",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3", store.Name())
	assert.Equal(t, "https://cdn.example.com/photos/k.jpg", store.(*S3Store).publicURL("k.jpg", "ignored"))

	_, err = NewStoreFromConfig(ctx, &config.Config{UploadBackend: "ftp"})
	assert.Error(t, err)
}
