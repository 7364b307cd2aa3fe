package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.Exists(ctx, "forge/derived_index.json")
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = s.Read(ctx, "forge/derived_index.json")
			assert.True(t, IsNotFound(err))
			assert.Equal(t, mcerrors.DataError, mcerrors.ClassOf(err))

			require.NoError(t, s.Write(ctx, "forge/derived_index.json", []byte(`{"a":1}`)))
			require.NoError(t, s.Write(ctx, "forge/derived_index.json", []byte(`{"a":2}`)))

			data, err := s.Read(ctx, "forge/derived_index.json")
			require.NoError(t, err)
			assert.Equal(t, `{"a":2}`, string(data))

			ok, err = s.Exists(ctx, "forge/derived_index.json")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, s.Delete(ctx, "forge/derived_index.json"))
			require.NoError(t, s.Delete(ctx, "forge/derived_index.json"))
			ok, _ = s.Exists(ctx, "forge/derived_index.json")
			assert.False(t, ok)
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{
				"mojang/versions/1.20.1.json",
				"mojang/versions/1.19.4.json",
				"mojang/version_manifest_v2.json",
				"forge/promotions_slim.json",
			} {
				require.NoError(t, s.Write(ctx, k, []byte("{}")))
			}
			keys, err := s.List(ctx, "mojang/versions/")
			require.NoError(t, err)
			assert.Equal(t, []string{"mojang/versions/1.19.4.json", "mojang/versions/1.20.1.json"}, keys)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 4)
		})
	}
}

func TestStoreRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "/etc/passwd", "../escape.json", "a/../../b"} {
				err := s.Write(ctx, key, []byte("x"))
				assert.Equal(t, mcerrors.ErrCodeInvalidPath, mcerrors.GetCode(err), "key %q", key)
			}
		})
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := range 32 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					key := fmt.Sprintf("forge/files_manifests/%d.json", i)
					assert.NoError(t, s.Write(ctx, key, []byte(key)))
				}()
			}
			wg.Wait()
			keys, err := s.List(ctx, "forge/files_manifests/")
			require.NoError(t, err)
			assert.Len(t, keys, 32)
		})
	}
}

func TestFileStoreSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "forge/a.json", []byte("{}")))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "forge", ".tmp-123"), []byte("partial"), 0o644))

	keys, err := s.List(ctx, "forge/")
	require.NoError(t, err)
	assert.Equal(t, []string{"forge/a.json"}, keys)
}

func TestFileStoreListScopesToPrefixDir(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	for _, k := range []string{
		"mojang/version_manifest_v2.json",
		"mojang/versions/1.20.1.json",
		"forge/jars/forge-1.5.2-7.8.1.738-installer.jar",
	} {
		require.NoError(t, s.Write(ctx, k, []byte("{}")))
	}

	keys, err := s.List(ctx, "mojang/version_")
	require.NoError(t, err)
	assert.Equal(t, []string{"mojang/version_manifest_v2.json"}, keys)

	keys, err = s.List(ctx, "fabric/versions/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = s.List(ctx, "../outside/")
	assert.Equal(t, mcerrors.ErrCodeInvalidInput, mcerrors.GetCode(err))
}

func TestFileStoreWriteFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	// A file where a directory is expected makes MkdirAll fail.
	require.NoError(t, s.Write(ctx, "forge", []byte("file")))

	err = s.Write(ctx, "forge/derived_index.json", []byte("{}"))
	require.Error(t, err)
	assert.Equal(t, mcerrors.Fatal, mcerrors.ClassOf(err))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := log.New(os.Stderr)

	s, err := Open(ctx, filepath.Join(t.TempDir(), "meta"), "", logger)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, "memory://", "", logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, "ftp://nowhere", "", logger)
	assert.Error(t, err)
}
