package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// SupportedComplianceLevel is the highest Mojang compliance level understood.
	SupportedComplianceLevel = 1
	// SupportedLauncherVersion is the highest minimumLauncherVersion accepted.
	SupportedLauncherVersion = 21
	// DefaultJavaMajor is assumed for versions that do not declare one.
	DefaultJavaMajor = 8
)

// compatibleJavaMajors lists extra Java majors that can run a version built
// for the key major.
var compatibleJavaMajors = map[int][]int{
	16: {17},
}

// =============================================================================
// Version Manifest
// =============================================================================

// MojangVersionManifest is the launcher's list of every published version.
type MojangVersionManifest struct {
	Latest   MojangManifestLatest    `json:"latest"`
	Versions []MojangManifestVersion `json:"versions" validate:"dive"`
}

// MojangManifestLatest names the newest release and snapshot.
type MojangManifestLatest struct {
	Release  string `json:"release" validate:"required"`
	Snapshot string `json:"snapshot" validate:"required"`
}

// MojangManifestVersion is one version entry in the manifest.
type MojangManifestVersion struct {
	ID              string    `json:"id" validate:"required"`
	Type            string    `json:"type" validate:"required"`
	URL             string    `json:"url" validate:"required,url"`
	Time            time.Time `json:"time"`
	ReleaseTime     time.Time `json:"releaseTime"`
	SHA1            string    `json:"sha1,omitempty"`
	ComplianceLevel int       `json:"complianceLevel"`
}

// Check rejects manifests that list the same id twice.
func (m *MojangVersionManifest) Check() error {
	seen := make(map[string]struct{}, len(m.Versions))
	for _, v := range m.Versions {
		if _, ok := seen[v.ID]; ok {
			return fmt.Errorf("duplicate version %q", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

// Lookup returns the manifest entry for id.
func (m *MojangVersionManifest) Lookup(id string) (MojangManifestVersion, bool) {
	for _, v := range m.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return MojangManifestVersion{}, false
}

// =============================================================================
// Version Document
// =============================================================================

// MojangArtifactBase is a download without a repository path.
type MojangArtifactBase struct {
	SHA1 *string `json:"sha1,omitempty"`
	Size *int    `json:"size,omitempty"`
	URL  string  `json:"url" validate:"required"`
}

// JavaVersion is the runtime a version was built for.
type JavaVersion struct {
	Component    string `json:"component,omitempty"`
	MajorVersion int    `json:"majorVersion" validate:"required"`
}

// MojangLogging configures the client's logger.
type MojangLogging struct {
	Argument string          `json:"argument"`
	File     json.RawMessage `json:"file"`
	Type     string          `json:"type" validate:"eq=log4j2-xml"`
}

// MojangArguments holds modern launch arguments. Entries are either plain
// strings or rule-guarded objects and are kept verbatim.
type MojangArguments struct {
	Game []json.RawMessage `json:"game,omitempty"`
	JVM  []json.RawMessage `json:"jvm,omitempty"`
}

// MojangVersion is a per-version document, as published by Mojang or
// embedded in a Forge installer as version.json.
type MojangVersion struct {
	Comment                []string                      `json:"_comment_,omitempty"`
	ID                     string                        `json:"id" validate:"required"`
	Arguments              *MojangArguments              `json:"arguments,omitempty"`
	AssetIndex             *MojangAssets                 `json:"assetIndex,omitempty"`
	Assets                 *string                       `json:"assets,omitempty"`
	Downloads              map[string]MojangArtifactBase `json:"downloads,omitempty" validate:"omitempty,dive"`
	Libraries              []MojangLibrary               `json:"libraries,omitempty" validate:"omitempty,dive"`
	MainClass              *string                       `json:"mainClass,omitempty"`
	AppletClass            *string                       `json:"appletClass,omitempty"`
	ProcessArguments       *string                       `json:"processArguments,omitempty"`
	MinecraftArguments     *string                       `json:"minecraftArguments,omitempty"`
	MinimumLauncherVersion *int                          `json:"minimumLauncherVersion,omitempty"`
	ReleaseTime            *time.Time                    `json:"releaseTime,omitempty"`
	Time                   *time.Time                    `json:"time,omitempty"`
	Type                   *string                       `json:"type,omitempty"`
	InheritsFrom           *string                       `json:"inheritsFrom,omitempty"`
	Logging                map[string]MojangLogging      `json:"logging,omitempty" validate:"omitempty,dive"`
	ComplianceLevel        *int                          `json:"complianceLevel,omitempty"`
	JavaVersion            *JavaVersion                  `json:"javaVersion,omitempty"`
}

// Check enforces the compliance level and launcher version ceilings.
func (v *MojangVersion) Check() error {
	if v.ComplianceLevel != nil && *v.ComplianceLevel > SupportedComplianceLevel {
		return fmt.Errorf("unsupported compliance level %d", *v.ComplianceLevel)
	}
	if v.MinimumLauncherVersion != nil && *v.MinimumLauncherVersion > SupportedLauncherVersion {
		return fmt.Errorf("unsupported launcher version %d", *v.MinimumLauncherVersion)
	}
	return nil
}

// ToMetaVersion converts v into a launcher component version.
// The client download becomes the main jar, compliance level 1 adds an
// (empty) trait list and "pending" versions are typed as experiments.
func (v *MojangVersion) ToMetaVersion(name, uid, version string) (MetaVersion, error) {
	if err := v.Check(); err != nil {
		return MetaVersion{}, err
	}

	mv := MetaVersion{
		FormatVersion:      MetaFormatVersion,
		Name:               name,
		UID:                uid,
		Version:            version,
		AssetIndex:         v.AssetIndex,
		MainClass:          v.MainClass,
		MinecraftArguments: v.MinecraftArguments,
		ReleaseTime:        v.ReleaseTime,
		Type:               v.Type,
	}

	if v.ID != "" {
		client, ok := v.Downloads["client"]
		if !ok {
			return MetaVersion{}, fmt.Errorf("version %s has no client download", v.ID)
		}
		mv.MainJar = &Library{MojangLibrary: MojangLibrary{
			Name: &GradleSpecifier{
				Group:      "com.mojang",
				Artifact:   "minecraft",
				Version:    v.ID,
				Classifier: "client",
				Extension:  "jar",
			},
			Downloads: &MojangLibraryDownloads{Artifact: &MojangArtifact{
				SHA1: client.SHA1,
				Size: client.Size,
				URL:  client.URL,
			}},
		}}
	}

	if v.ComplianceLevel != nil && *v.ComplianceLevel == 1 {
		mv.AdditionalTraits = []string{}
	}

	major := DefaultJavaMajor
	if v.JavaVersion != nil {
		major = v.JavaVersion.MajorVersion
	}
	mv.CompatibleJavaMajors = append([]int{major}, compatibleJavaMajors[major]...)

	if v.Type != nil && *v.Type == "pending" {
		experiment := "experiment"
		mv.Type = &experiment
	}

	if v.Libraries != nil {
		mv.Libraries = make([]Library, len(v.Libraries))
		for i, lib := range v.Libraries {
			mv.Libraries[i] = Library{MojangLibrary: lib}
		}
	}
	return mv, nil
}
