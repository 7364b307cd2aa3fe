// Package pkg provides the libraries behind mcmeta, a mirror of Minecraft
// and Forge launcher metadata.
//
// # Overview
//
// The pkg directory is organized by concern:
//
//  1. [models] - Upstream and launcher document types, strict decoding and validation
//  2. [merge] - Field-level merge of partial documents by declared strategy
//  3. [syncer] - Identity diffing and the bounded, classified sync scheduler
//  4. [changegate] - Content-hash gate that skips regeneration of unchanged documents
//  5. [mojang] and [forge] - The two sync sources
//  6. [integrations] - Upstream HTTP clients with caching, retry and rate limiting
//  7. [storage] and [cache] - File, S3 and MongoDB stores; file and Redis response caches
//  8. [server] - Read-through HTTP access to the mirrored documents
//
// # Architecture
//
// One sync cycle per source:
//
//	Upstream listing
//	       ↓
//	[syncer.Diff] against the stored listing
//	       ↓
//	[syncer.Run] fetch + validate + persist, bounded and classified
//	       ↓
//	derived documents, guarded by [changegate]
//	       ↓
//	[storage.Store]  →  [server]
//
// # Errors
//
// Failures carry a code from [errors]. The code decides the class:
// transient failures are retried next cycle, data errors are reported and
// skipped, and fatal failures stop the source.
package pkg
