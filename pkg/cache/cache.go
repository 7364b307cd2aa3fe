// Package cache provides the byte-oriented response cache used by the
// upstream HTTP clients.
//
// Three backends are available: [FileCache] for a local directory,
// [RedisCache] for a shared Redis instance and [NullCache] to disable
// caching. [Open] picks one from a URI.
package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Cache stores opaque values under string keys with an optional TTL.
// A zero TTL means the entry does not expire.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a response fetched by a named client.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces "http:<namespace>:<key>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey implements [Keyer].
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// Open returns the cache selected by uri.
//
//   - "" or "file://<dir>": a [FileCache] in dir, or in fallbackDir when uri is empty
//   - "none": a [NullCache]
//   - "redis://..." or "rediss://...": a [RedisCache]
func Open(ctx context.Context, uri, fallbackDir string) (Cache, error) {
	if uri == "" {
		return openFile(fallbackDir)
	}
	if uri == "none" {
		return NewNullCache(), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse cache uri: %w", err)
	}
	switch u.Scheme {
	case "file":
		return openFile(u.Host + u.Path)
	case "redis", "rediss":
		c, err := NewRedisCache(ctx, uri)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache scheme %q", u.Scheme)
	}
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
