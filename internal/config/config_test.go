package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.BindAddress)
	assert.Equal(t, "file://meta", cfg.Storage.URI)
	assert.Equal(t, "generated", cfg.Storage.GeneratedDirectory)
	assert.Equal(t, 4, cfg.Metadata.MaxParallelFetchConnections)
	assert.Equal(t, "static", cfg.Metadata.StaticDirectory)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.DebugLog.Enable)
	assert.Equal(t, "mcmeta.log", cfg.DebugLog.Prefix)
	assert.Contains(t, cfg.Upstream.Mojang.ManifestURL, "version_manifest_v2.json")
	assert.Contains(t, cfg.Upstream.Forge.URLs().Promotions, "promotions_slim.json")
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("MCMETA_METADATA__MAX_PARALLEL_FETCH_CONNECTIONS", "8")
	t.Setenv("MCMETA_STORAGE__URI", "s3://minio:9000/meta?region=eu-west-1")
	t.Setenv("MCMETA_CACHE__TTL", "15m")
	t.Setenv("MCMETA_UPSTREAM__MOJANG__MANIFEST_URL", "http://localhost/manifest.json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Metadata.MaxParallelFetchConnections)
	assert.Equal(t, "s3://minio:9000/meta?region=eu-west-1", cfg.Storage.URI)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "http://localhost/manifest.json", cfg.Upstream.Mojang.ManifestURL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcmeta.toml")
	body := `bind_address = "0.0.0.0:9000"

[metadata]
max_parallel_fetch_connections = 2

[debug_log]
enable = true
level = "info"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Run("flag", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:9000", cfg.BindAddress)
		assert.Equal(t, 2, cfg.Metadata.MaxParallelFetchConnections)
		assert.True(t, cfg.DebugLog.Enable)
		assert.Equal(t, "static", cfg.Metadata.StaticDirectory)
	})

	t.Run("environment names the file", func(t *testing.T) {
		t.Setenv(FileEnv, path)
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:9000", cfg.BindAddress)
	})

	t.Run("environment beats file", func(t *testing.T) {
		t.Setenv("MCMETA_BIND_ADDRESS", "127.0.0.1:7000")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:7000", cfg.BindAddress)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := LoadWithViper(NewViper())
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero workers", func(c *Config) { c.Metadata.MaxParallelFetchConnections = 0 }, "max_parallel_fetch_connections"},
		{"empty storage uri", func(c *Config) { c.Storage.URI = "" }, "storage.uri"},
		{"unsupported storage scheme", func(c *Config) { c.Storage.URI = "ftp://host/meta" }, "storage.uri"},
		{"half credentials", func(c *Config) { c.Storage.AccessKey = "minio" }, "set together"},
		{"negative rate", func(c *Config) { c.Metadata.RequestsPerSecond = -1 }, "requests_per_second"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"empty bind address", func(c *Config) { c.BindAddress = "" }, "bind_address"},
		{"bad log level", func(c *Config) {
			c.DebugLog.Enable = true
			c.DebugLog.Level = "trace"
		}, "debug_log.level"},
		{"log level ignored when disabled", func(c *Config) { c.DebugLog.Level = "trace" }, ""},
		{"non http upstream", func(c *Config) { c.Upstream.Mojang.ManifestURL = "file:///etc/manifest.json" }, "upstream.mojang.manifest_url"},
		{"bad forge upstream", func(c *Config) { c.Upstream.Forge.PromotionsURL = "files.minecraftforge.net/promotions_slim.json" }, "upstream.forge.promotions_url"},
		{"blank upstream uses default", func(c *Config) { c.Upstream.Forge.FilesBaseURL = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStorageToken(t *testing.T) {
	assert.Equal(t, "", StorageConfig{}.Token())
	assert.Equal(t, "minio:secret", StorageConfig{AccessKey: "minio", SecretKey: "secret"}.Token())
}

func TestTOMLRedactsSecrets(t *testing.T) {
	cfg, err := LoadWithViper(NewViper())
	require.NoError(t, err)
	cfg.Storage.AccessKey = "minio"
	cfg.Storage.SecretKey = "hunter2"
	cfg.Storage.URI = "mongodb://admin:pw@db:27017/meta"

	out, err := cfg.TOML()
	require.NoError(t, err)
	assert.Contains(t, out, "[storage]")
	assert.Contains(t, out, "max_parallel_fetch_connections = 4")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, ":pw@")
	assert.Equal(t, "hunter2", cfg.Storage.SecretKey, "TOML must not mutate the config")
}
