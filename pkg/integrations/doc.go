// Package integrations provides HTTP clients for the upstream metadata
// sources.
//
// # Overview
//
// Each upstream has its own subpackage:
//
//   - [mojang]: the game's version manifest and per-version documents
//   - [forge]: the loader's maven metadata, promotions, per-build file
//     manifests and installer archives
//
// # Client Pattern
//
// All upstream clients embed the shared [Client]:
//
//	c := mojang.NewClient(respCache, time.Hour)
//	manifest, raw, err := c.FetchManifest(ctx, false) // false = use cache
//
// The shared client handles:
//   - HTTP requests with a bounded timeout, retry and optional rate limiting
//   - Response caching through [cache.Cache] with a namespace and TTL
//   - Mapping transport and status failures onto error codes, so that
//     network trouble is Transient and a 404 is a DataError
//
// Retries happen inside the caller's goroutine, so a sync worker holding a
// concurrency slot never fans out extra requests.
//
// [mojang]: github.com/PrismLauncher/mcmeta/pkg/integrations/mojang
// [forge]: github.com/PrismLauncher/mcmeta/pkg/integrations/forge
// [cache.Cache]: github.com/PrismLauncher/mcmeta/pkg/cache.Cache
package integrations
