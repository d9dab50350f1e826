package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/fncache"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, fncache.DefaultConfig(), cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FNCACHE_CACHE_TYPE", "lru")
	t.Setenv("FNCACHE_STORAGE_TYPE", "remote")
	t.Setenv("FNCACHE_TTL", "30s")
	t.Setenv("FNCACHE_MAX_SIZE", "5")
	t.Setenv("FNCACHE_CODEC", "msgpack")
	t.Setenv("FNCACHE_SUBJECT_FOLLOWS_GLOBAL", "true")
	t.Setenv("FNCACHE_REDIS_ADDR", "redis:6380")
	t.Setenv("FNCACHE_REDIS_DB", "3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, fncache.CacheLRU, cfg.CacheType)
	assert.Equal(t, fncache.StorageRemote, cfg.StorageType)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, 5, cfg.MaxSize)
	assert.Equal(t, fncache.CodecMsgpack, cfg.Codec)
	assert.True(t, cfg.SubjectFollowsGlobal)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "cache:", cfg.Prefix)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("FNCACHE_MAX_SIZE", "0")
	_, err := FromEnv()
	var ce *fncache.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "max_size", ce.Field)
}

func TestFromEnv_UnknownEnum(t *testing.T) {
	t.Setenv("FNCACHE_CODEC", "xml")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "fncache.yaml", `
cache_type: lru
max_size: 2
ttl: 90s
prefix: "svc:"
codec: cbor
redis:
  addr: cache.internal:6379
  read_timeout: 250ms
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, fncache.CacheLRU, cfg.CacheType)
	assert.Equal(t, 2, cfg.MaxSize)
	assert.Equal(t, 90*time.Second, cfg.TTL)
	assert.Equal(t, "svc:", cfg.Prefix)
	assert.Equal(t, fncache.CodecCBOR, cfg.Codec)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.ReadTimeout)
	// untouched fields keep their defaults
	assert.Equal(t, time.Second, cfg.Redis.WriteTimeout)
	assert.Equal(t, fncache.StorageMemory, cfg.StorageType)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeFile(t, "fncache.yaml", "ttl: 90s\nprefix: file\n")
	t.Setenv("FNCACHE_TTL", "5s")
	t.Setenv("FNCACHE_REDIS_ADDR", "env:6379")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.TTL)
	assert.Equal(t, "file", cfg.Prefix)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "fncache.json", `{"storage_type": "redis", "codec": "gob"}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, fncache.StorageRemote, cfg.StorageType)
	assert.Equal(t, fncache.CodecGob, cfg.Codec)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, fncache.DefaultConfig(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	p := writeFile(t, "bad.yaml", "ttl: -1s\n")
	_, err = Load(p)
	var ce *fncache.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ttl", ce.Field)

	p = writeFile(t, "enum.yaml", "cache_type: fifo\n")
	_, err = Load(p)
	require.Error(t, err)
}
