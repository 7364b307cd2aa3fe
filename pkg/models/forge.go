package models

import (
	"fmt"
	"time"

	"github.com/PrismLauncher/mcmeta/pkg/merge"
)

// ForgeMavenURL is the maven repository Forge files are downloaded from.
const ForgeMavenURL = "https://maven.minecraftforge.net/net/minecraftforge/forge"

// =============================================================================
// Upstream Listings
// =============================================================================

// ForgeMavenMetadata maps each game version to the long versions published
// for it, in upstream publication order.
type ForgeMavenMetadata map[string][]string

// Check rejects empty keys and long versions.
func (m ForgeMavenMetadata) Check() error {
	for mc, versions := range m {
		if mc == "" {
			return fmt.Errorf("empty game version key")
		}
		for _, lv := range versions {
			if lv == "" {
				return fmt.Errorf("empty long version under %q", mc)
			}
		}
	}
	return nil
}

// ForgeMavenPromotions maps promotion keys such as "1.20-recommended" to
// short versions.
type ForgeMavenPromotions struct {
	Homepage string            `json:"homepage"`
	Promos   map[string]string `json:"promos"`
}

// ForgeVersionMeta is the per-build files manifest (meta.json): classifier
// to extension to content hash.
type ForgeVersionMeta struct {
	Classifiers map[string]map[string]string `json:"classifiers"`
}

// =============================================================================
// Derived Index
// =============================================================================

// ForgeFile is one published file of a build.
type ForgeFile struct {
	Classifier string `json:"classifier" validate:"required"`
	Hash       string `json:"hash" validate:"len=32,hexadecimal"`
	Extension  string `json:"extension" validate:"required"`
}

// Filename returns "forge-<longVersion>-<classifier>.<extension>".
func (f ForgeFile) Filename(longVersion string) string {
	return "forge-" + longVersion + "-" + f.Classifier + "." + f.Extension
}

// URL returns the maven download URL of the file.
func (f ForgeFile) URL(longVersion string) string {
	return ForgeMavenURL + "/" + longVersion + "/" + f.Filename(longVersion)
}

// ForgeEntry describes one Forge build.
type ForgeEntry struct {
	LongVersion string               `json:"longversion" validate:"required"`
	MCVersion   string               `json:"mcversion" validate:"required"`
	Version     string               `json:"version" validate:"required"`
	Build       int                  `json:"build"`
	Branch      *string              `json:"branch,omitempty"`
	Latest      *bool                `json:"latest,omitempty"`
	Recommended *bool                `json:"recommended,omitempty"`
	Files       map[string]ForgeFile `json:"files,omitempty" validate:"omitempty,dive"`
}

// ForgeMCVersionInfo summarizes the builds of one game version.
type ForgeMCVersionInfo struct {
	Latest      *string  `json:"latest,omitempty"`
	Recommended *string  `json:"recommended,omitempty"`
	Versions    []string `json:"versions"`
}

// DerivedForgeIndex is the locally computed index of every known build,
// keyed by long version and grouped by game version.
type DerivedForgeIndex struct {
	Versions    map[string]ForgeEntry         `json:"versions" validate:"dive"`
	ByMCVersion map[string]ForgeMCVersionInfo `json:"by_mcversion"`
}

// NewDerivedForgeIndex returns an empty index.
func NewDerivedForgeIndex() *DerivedForgeIndex {
	return &DerivedForgeIndex{
		Versions:    make(map[string]ForgeEntry),
		ByMCVersion: make(map[string]ForgeMCVersionInfo),
	}
}

// =============================================================================
// Build Artifact Info
// =============================================================================

// ForgeLegacyInfo describes the bare archive of a build that predates the
// installer.
type ForgeLegacyInfo struct {
	ReleaseTime *time.Time `json:"releaseTime,omitempty"`
	Size        *int64     `json:"size,omitempty"`
	SHA256      *string    `json:"sha256,omitempty"`
	SHA1        *string    `json:"sha1,omitempty"`
}

// Merge takes every field the overlay sets.
func (l ForgeLegacyInfo) Merge(o ForgeLegacyInfo) ForgeLegacyInfo {
	return ForgeLegacyInfo{
		ReleaseTime: merge.OverwriteIfPresent(l.ReleaseTime, o.ReleaseTime),
		Size:        merge.OverwriteIfPresent(l.Size, o.Size),
		SHA256:      merge.OverwriteIfPresent(l.SHA256, o.SHA256),
		SHA1:        merge.OverwriteIfPresent(l.SHA1, o.SHA1),
	}
}

// ForgeLegacyInfoList holds legacy info for every legacy build, keyed by
// long version.
type ForgeLegacyInfoList struct {
	Number map[string]ForgeLegacyInfo `json:"number"`
}

// Merge merges the lists key-wise.
func (l ForgeLegacyInfoList) Merge(o ForgeLegacyInfoList) ForgeLegacyInfoList {
	return ForgeLegacyInfoList{Number: merge.RecurseMap(l.Number, o.Number)}
}

// InstallerInfo records the digests and size of a downloaded installer.
type InstallerInfo struct {
	SHA1Hash   *string `json:"sha1hash,omitempty"`
	SHA256Hash *string `json:"sha256hash,omitempty"`
	Size       *int64  `json:"size,omitempty"`
}
