// Package forge derives the Forge index from upstream listings and extracts
// installer metadata from build archives.
//
// A [Pipeline] run walks these stages once:
//
//	FetchPromotions -> ParsePromotions -> FetchVersionList
//	  -> ParseVersionEntries (bounded) -> BuildIndex -> PersistIndex
//	  -> change gate -> ExtractInstallerArtifacts (bounded)
//
// Per-build failures are collected and reported; the index is built from
// every build that parsed. Upstream's own "latest" promotion is never
// trusted: latest is always the last build discovered for a game version.
//
// Storage layout (keys relative to the metadata store):
//
//	forge/maven-metadata.json
//	forge/promotions_slim.json
//	forge/derived_index.json
//	forge/derived_index.last_index.json
//	forge/files_manifests/<longVersion>.json
//	forge/installer_manifests/<longVersion>.json
//	forge/version_manifests/<longVersion>.json
//	forge/installer_info/<longVersion>.json
//	forge/jars/<filename>
//
// Legacy build info lives in the static store at forge/forge-legacyinfo.json.
package forge
