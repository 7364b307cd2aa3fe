package models

import (
	"sort"
	"strconv"
	"strings"
)

// maxSupportedMajor is the first Forge major version that is no longer
// processed.
const maxSupportedMajor = 37

// ForgeProcessedVersion is a [ForgeEntry] with its download locations
// resolved.
type ForgeProcessedVersion struct {
	Build             int
	RawVersion        string
	MCVersion         string
	MCVersionSane     string
	Branch            *string
	LongVersion       string
	InstallerFilename string
	InstallerURL      string
	UniversalFilename string
	UniversalURL      string
	ChangelogURL      string
}

// NewForgeProcessedVersion resolves the installer, universal and changelog
// files of e.
func NewForgeProcessedVersion(e ForgeEntry) ForgeProcessedVersion {
	v := ForgeProcessedVersion{
		Build:         e.Build,
		RawVersion:    e.Version,
		MCVersion:     e.MCVersion,
		MCVersionSane: strings.Replace(e.MCVersion, "_pre", "-pre", 1),
		Branch:        e.Branch,
		LongVersion:   e.MCVersion + "-" + e.Version,
	}
	if e.Branch != nil {
		v.LongVersion += "-" + *e.Branch
	}

	classifiers := make([]string, 0, len(e.Files))
	for c := range e.Files {
		classifiers = append(classifiers, c)
	}
	sort.Strings(classifiers)

	for _, classifier := range classifiers {
		f := e.Files[classifier]
		switch {
		case classifier == "installer" && f.Extension == "jar":
			v.InstallerFilename = f.Filename(v.LongVersion)
			v.InstallerURL = f.URL(v.LongVersion)
		case (classifier == "universal" || classifier == "client") && (f.Extension == "jar" || f.Extension == "zip"):
			v.UniversalFilename = f.Filename(v.LongVersion)
			v.UniversalURL = f.URL(v.LongVersion)
		case classifier == "changelog" && f.Extension == "txt":
			v.ChangelogURL = f.URL(v.LongVersion)
		}
	}
	return v
}

// Name returns the display name, e.g. "Forge 2851".
func (v ForgeProcessedVersion) Name() string {
	return "Forge " + strconv.Itoa(v.Build)
}

// UsesInstaller reports whether the build ships an installer archive.
// 1.5.2 builds published one, but it does not carry a usable profile.
func (v ForgeProcessedVersion) UsesInstaller() bool {
	return v.InstallerURL != "" && v.MCVersion != "1.5.2"
}

// Filename returns the archive that describes the build: the installer
// when it has one, the universal archive otherwise.
func (v ForgeProcessedVersion) Filename() string {
	if v.UsesInstaller() {
		return v.InstallerFilename
	}
	return v.UniversalFilename
}

// URL returns the download URL of [ForgeProcessedVersion.Filename].
func (v ForgeProcessedVersion) URL() string {
	if v.UsesInstaller() {
		return v.InstallerURL
	}
	return v.UniversalURL
}

// IsSupported reports whether the build can be processed: it must have a
// downloadable archive and a major version below 37.
func (v ForgeProcessedVersion) IsSupported() bool {
	if v.URL() == "" {
		return false
	}
	majorStr, _, _ := strings.Cut(v.RawVersion, ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return false
	}
	return major < maxSupportedMajor
}
