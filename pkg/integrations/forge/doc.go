// Package forge provides an HTTP client for the Forge file server and maven.
//
// # Overview
//
// Forge publishes four kinds of documents this client reads:
//
//   - maven-metadata.json: game version to long versions
//   - promotions_slim.json: promotion keys to short versions
//   - <longVersion>/meta.json: per-build classifier to extension to md5
//   - installer and universal archives on the maven repository
//
// Listings are always fetched fresh. Per-build manifests never change once
// published, so they go through the response cache.
package forge
