package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/PrismLauncher/mcmeta/internal/config"
	"github.com/PrismLauncher/mcmeta/pkg/cache"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
)

// appName is the application name used for directories and display.
const appName = "mcmeta"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configFile string
	cfg        *config.Config
	debugLog   io.Closer
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close releases the debug log file, if one was opened.
func (c *CLI) Close() error {
	if c.debugLog == nil {
		return nil
	}
	err := c.debugLog.Close()
	c.debugLog = nil
	c.Logger.SetOutput(c.out)
	return err
}

// loadConfig reads the configuration once and applies its logging settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}
	if cfg.DebugLog.Enable {
		if err := c.teeDebugLog(cfg.DebugLog); err != nil {
			return nil, err
		}
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Backends
// =============================================================================

// backends are the stores and cache a sync or serve command works against.
type backends struct {
	store  storage.Store
	static storage.Store
	cache  cache.Cache
}

func (b *backends) Close() error {
	var errs []error
	for _, c := range []io.Closer{b.store, b.static, b.cache} {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// openBackends opens the metadata store, the static store and the response
// cache. noCache replaces the configured cache with a null cache.
func (c *CLI) openBackends(ctx context.Context, cfg *config.Config, noCache bool) (*backends, error) {
	b := &backends{}
	var err error
	if b.store, err = storage.Open(ctx, cfg.Storage.URI, cfg.Storage.Token(), c.Logger); err != nil {
		return nil, err
	}
	static, err := storage.NewFileStore(cfg.Metadata.StaticDirectory)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.static = static
	if b.cache, err = openCache(ctx, cfg.Cache.URI, noCache); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func openCache(ctx context.Context, uri string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && uri == "" {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, uri, dir)
}

// cacheKeyer scopes cache keys when a prefix is configured.
func cacheKeyer(prefix string) cache.Keyer {
	if prefix == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, prefix)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mcmeta/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
