// Package storage persists synced metadata documents.
//
// A [Store] is a flat key-value space with slash-separated keys such as
// "forge/files_manifests/1.20.1-47.1.0.json". Listing a prefix enumerates
// a namespace, which is how the sync engines discover what is already
// mirrored. Writes to distinct keys are independent, so concurrent sync
// tasks never need to coordinate as long as each owns its keys.
//
// Backends are selected by URI with [Open]:
//
//	file://meta                       local directory (default)
//	memory://                         in-process map, for tests
//	s3://endpoint/bucket/prefix       S3-compatible object store
//	mongodb://host:27017/mcmeta       MongoDB collection
package storage

import (
	"context"
	"errors"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

// ErrNotFound is wrapped by Read when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// Store is a key-value document store.
type Store interface {
	// Exists reports whether key holds a document.
	Exists(ctx context.Context, key string) (bool, error)
	// Read returns the document at key, or an error wrapping [ErrNotFound].
	Read(ctx context.Context, key string) ([]byte, error)
	// Write replaces the document at key.
	Write(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every key under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Close releases backend resources.
	Close() error
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func notFound(key string) error {
	return mcerrors.Wrap(mcerrors.ErrCodeFileNotFound, ErrNotFound, "%s", key)
}

func failed(op, key string, err error) error {
	return mcerrors.Storagef(err, "%s %s", op, key)
}
