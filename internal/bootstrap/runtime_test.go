package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"photoalbum/internal/cache"
	"photoalbum/internal/config"
	"photoalbum/internal/models"
	"photoalbum/internal/seed"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const unreachableRedis = "127.0.0.1:1"

func testConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:           "test",
		DBDriver:      "sqlite",
		DBSQLitePath:  filepath.Join(dir, "album.db"),
		RedisURL:      redisAddr,
		UploadBackend: "local",
		UploadDir:     filepath.Join(dir, "uploads"),
	}
}

func TestInitRuntime_SeedsEmptyDatabaseOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, mr.Addr())
	t.Cleanup(func() { cache.SetClient(nil) })

	opts := Options{
		SeedDemo: true,
		Seed:     seed.Options{NumUsers: 2, AlbumsPerUser: 1, PhotosPerAlbum: 3, BcryptCost: bcrypt.MinCost},
	}

	rt, err := InitRuntime(context.Background(), cfg, opts)
	require.NoError(t, err)
	assert.NotNil(t, rt.Redis)
	require.NotNil(t, rt.Store)
	assert.Equal(t, "local", rt.Store.Name())

	var users int64
	require.NoError(t, rt.DB.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
	rt.Close()

	rt, err = InitRuntime(context.Background(), cfg, opts)
	require.NoError(t, err)
	defer rt.Close()
	require.NoError(t, rt.DB.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
}

func TestInitRuntime_WithoutRedisOrStorage(t *testing.T) {
	cfg := testConfig(t, unreachableRedis)
	rt, err := InitRuntime(context.Background(), cfg, Options{SkipStorage: true})
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Redis)
	assert.Nil(t, rt.Store)
}

func TestInitRuntime_BadUploadBackend(t *testing.T) {
	cfg := testConfig(t, unreachableRedis)
	cfg.UploadBackend = "ftp"

	_, err := InitRuntime(context.Background(), cfg, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload storage")
}
