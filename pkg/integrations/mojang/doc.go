// Package mojang provides an HTTP client for Mojang's launcher metadata.
//
// The version manifest is always fetched fresh. Per-version documents are
// addressed by content (their URL embeds a sha1), so they are cached.
package mojang
