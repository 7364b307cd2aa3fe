package forge

// Storage keys. KeyLegacyInfo lives in the static store, the rest in the
// metadata store.
const (
	KeyMavenMetadata = "forge/maven-metadata.json"
	KeyPromotions    = "forge/promotions_slim.json"
	KeyDerivedIndex  = "forge/derived_index.json"
	KeyLegacyInfo    = "forge/forge-legacyinfo.json"

	PrefixFilesManifests     = "forge/files_manifests/"
	PrefixInstallerManifests = "forge/installer_manifests/"
	PrefixVersionManifests   = "forge/version_manifests/"
	PrefixInstallerInfo      = "forge/installer_info/"
	PrefixJars               = "forge/jars/"
)

// FilesManifestKey is where the meta.json of a build is mirrored.
func FilesManifestKey(longVersion string) string {
	return PrefixFilesManifests + longVersion + ".json"
}

// InstallerManifestKey is where the installer profile of a build is stored.
func InstallerManifestKey(longVersion string) string {
	return PrefixInstallerManifests + longVersion + ".json"
}

// VersionManifestKey is where the embedded version.json of a build is stored.
func VersionManifestKey(longVersion string) string {
	return PrefixVersionManifests + longVersion + ".json"
}

// InstallerInfoKey is where the installer digests of a build are stored.
func InstallerInfoKey(longVersion string) string {
	return PrefixInstallerInfo + longVersion + ".json"
}

// JarKey is where a downloaded archive is kept.
func JarKey(filename string) string {
	return PrefixJars + filename
}
