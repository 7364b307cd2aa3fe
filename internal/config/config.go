// Package config loads mcmeta settings from defaults, an optional config
// file and MCMETA_* environment variables.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	forgeapi "github.com/PrismLauncher/mcmeta/pkg/integrations/forge"
	mojangapi "github.com/PrismLauncher/mcmeta/pkg/integrations/mojang"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
)

// EnvPrefix prefixes every environment variable. Nested keys use "__",
// e.g. MCMETA_METADATA__MAX_PARALLEL_FETCH_CONNECTIONS.
const EnvPrefix = "MCMETA"

// FileEnv names a config file when --config is not given.
const FileEnv = EnvPrefix + "_CONFIG_FILE"

// Config holds all mcmeta settings.
type Config struct {
	BindAddress string         `mapstructure:"bind_address" toml:"bind_address"`
	Storage     StorageConfig  `mapstructure:"storage" toml:"storage"`
	Metadata    MetadataConfig `mapstructure:"metadata" toml:"metadata"`
	Cache       CacheConfig    `mapstructure:"cache" toml:"cache"`
	Upstream    UpstreamConfig `mapstructure:"upstream" toml:"upstream"`
	DebugLog    DebugLogConfig `mapstructure:"debug_log" toml:"debug_log"`
}

// StorageConfig locates the metadata store. Regions for S3 travel in the
// URI query (s3://endpoint/bucket?region=eu-west-1).
type StorageConfig struct {
	URI                string `mapstructure:"uri" toml:"uri"`
	AccessKey          string `mapstructure:"access_key" toml:"access_key"`
	SecretKey          string `mapstructure:"secret_key" toml:"secret_key"`
	GeneratedDirectory string `mapstructure:"generated_directory" toml:"generated_directory"`
}

// Token combines the S3 credentials into the form [storage.Open] expects.
func (s StorageConfig) Token() string {
	if s.AccessKey == "" && s.SecretKey == "" {
		return ""
	}
	return s.AccessKey + ":" + s.SecretKey
}

// MetadataConfig tunes the sync sources.
type MetadataConfig struct {
	MaxParallelFetchConnections int     `mapstructure:"max_parallel_fetch_connections" toml:"max_parallel_fetch_connections"`
	StaticDirectory             string  `mapstructure:"static_directory" toml:"static_directory"`
	RequestsPerSecond           float64 `mapstructure:"requests_per_second" toml:"requests_per_second"`
}

// CacheConfig selects the upstream response cache.
type CacheConfig struct {
	URI string        `mapstructure:"uri" toml:"uri"`
	TTL time.Duration `mapstructure:"ttl" toml:"ttl"`

	// KeyPrefix scopes keys when several deployments share one Redis.
	KeyPrefix string `mapstructure:"key_prefix" toml:"key_prefix"`
}

// UpstreamConfig overrides upstream locations.
type UpstreamConfig struct {
	Forge  ForgeUpstream  `mapstructure:"forge" toml:"forge"`
	Mojang MojangUpstream `mapstructure:"mojang" toml:"mojang"`
}

// ForgeUpstream locates the Forge file server and maven.
type ForgeUpstream struct {
	MavenMetadataURL string `mapstructure:"maven_metadata_url" toml:"maven_metadata_url"`
	PromotionsURL    string `mapstructure:"promotions_url" toml:"promotions_url"`
	FilesBaseURL     string `mapstructure:"files_base_url" toml:"files_base_url"`
	MavenBaseURL     string `mapstructure:"maven_base_url" toml:"maven_base_url"`
}

// URLs converts the settings for the Forge client.
func (f ForgeUpstream) URLs() forgeapi.URLs {
	return forgeapi.URLs{
		MavenMetadata: f.MavenMetadataURL,
		Promotions:    f.PromotionsURL,
		FilesBase:     f.FilesBaseURL,
		MavenBase:     f.MavenBaseURL,
	}
}

// MojangUpstream locates the launcher manifest.
type MojangUpstream struct {
	ManifestURL string `mapstructure:"manifest_url" toml:"manifest_url"`
}

// DebugLogConfig controls the optional log file.
type DebugLogConfig struct {
	Enable bool   `mapstructure:"enable" toml:"enable"`
	Path   string `mapstructure:"path" toml:"path"`
	Prefix string `mapstructure:"prefix" toml:"prefix"`
	Level  string `mapstructure:"level" toml:"level"`
}

// NewViper creates a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("bind_address", "127.0.0.1:8080")
	v.SetDefault("storage.uri", "file://meta")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.generated_directory", "generated")
	v.SetDefault("metadata.max_parallel_fetch_connections", 4)
	v.SetDefault("metadata.static_directory", "static")
	v.SetDefault("metadata.requests_per_second", 0)
	v.SetDefault("cache.uri", "")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.key_prefix", "")
	v.SetDefault("upstream.forge.maven_metadata_url", forgeapi.DefaultMavenMetadataURL)
	v.SetDefault("upstream.forge.promotions_url", forgeapi.DefaultPromotionsURL)
	v.SetDefault("upstream.forge.files_base_url", forgeapi.DefaultFilesBaseURL)
	v.SetDefault("upstream.forge.maven_base_url", forgeapi.DefaultMavenBaseURL)
	v.SetDefault("upstream.mojang.manifest_url", mojangapi.DefaultManifestURL)
	v.SetDefault("debug_log.enable", false)
	v.SetDefault("debug_log.path", "./logs")
	v.SetDefault("debug_log.prefix", "mcmeta.log")
	v.SetDefault("debug_log.level", "debug")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration. An empty file falls back to $MCMETA_CONFIG_FILE;
// when both are empty only defaults and the environment apply.
func Load(file string) (*Config, error) {
	v := NewViper()
	if file == "" {
		file = os.Getenv(FileEnv)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates a pre-configured viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BindAddress == "" {
		return fmt.Errorf("bind_address must not be empty")
	}
	if _, err := storage.ParseURI(c.Storage.URI); err != nil {
		return fmt.Errorf("invalid storage.uri: %w", err)
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return fmt.Errorf("storage.access_key and storage.secret_key must be set together")
	}
	if c.Storage.GeneratedDirectory == "" {
		return fmt.Errorf("storage.generated_directory must not be empty")
	}
	if c.Metadata.MaxParallelFetchConnections < 1 {
		return fmt.Errorf("metadata.max_parallel_fetch_connections must be at least 1")
	}
	if c.Metadata.StaticDirectory == "" {
		return fmt.Errorf("metadata.static_directory must not be empty")
	}
	if c.Metadata.RequestsPerSecond < 0 {
		return fmt.Errorf("metadata.requests_per_second must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.DebugLog.Enable && !validLevels[strings.ToLower(c.DebugLog.Level)] {
		return fmt.Errorf("debug_log.level must be debug, info, warn, or error")
	}
	return c.Upstream.validate()
}

// validate checks every overridden upstream URL. Empty values fall back to
// the built-in defaults.
func (u UpstreamConfig) validate() error {
	for _, f := range []struct{ key, url string }{
		{"upstream.forge.maven_metadata_url", u.Forge.MavenMetadataURL},
		{"upstream.forge.promotions_url", u.Forge.PromotionsURL},
		{"upstream.forge.files_base_url", u.Forge.FilesBaseURL},
		{"upstream.forge.maven_base_url", u.Forge.MavenBaseURL},
		{"upstream.mojang.manifest_url", u.Mojang.ManifestURL},
	} {
		if f.url == "" {
			continue
		}
		if err := mcerrors.ValidateURL(f.url); err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
	}
	return nil
}

// Redacted returns a copy with credentials masked for display.
func (c Config) Redacted() Config {
	if c.Storage.SecretKey != "" {
		c.Storage.SecretKey = "***"
	}
	if u, err := storage.ParseURI(c.Storage.URI); err == nil {
		c.Storage.URI = u.String()
	}
	return c
}

// TOML renders the redacted configuration.
func (c *Config) TOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.Redacted()); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return buf.String(), nil
}
