package models

import (
	"errors"
	"fmt"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/merge"
)

// =============================================================================
// Shared Installer Sections
// =============================================================================

// InstallSection is the "install" block of legacy and V1 installer profiles.
type InstallSection struct {
	ProfileName string          `json:"profileName" validate:"required"`
	Target      string          `json:"target" validate:"required"`
	Path        GradleSpecifier `json:"path"`
	Version     string          `json:"version" validate:"required"`
	FilePath    string          `json:"filePath" validate:"required"`
	Welcome     string          `json:"welcome"`
	Minecraft   string          `json:"minecraft" validate:"required"`
	Logo        string          `json:"logo"`
	MirrorList  string          `json:"mirrorList"`
	ModList     *string         `json:"modList,omitempty"`
}

// Merge overwrites every required field and takes the mod list when set.
func (s InstallSection) Merge(o InstallSection) InstallSection {
	return InstallSection{
		ProfileName: merge.Overwrite(s.ProfileName, o.ProfileName),
		Target:      merge.Overwrite(s.Target, o.Target),
		Path:        merge.Overwrite(s.Path, o.Path),
		Version:     merge.Overwrite(s.Version, o.Version),
		FilePath:    merge.Overwrite(s.FilePath, o.FilePath),
		Welcome:     merge.Overwrite(s.Welcome, o.Welcome),
		Minecraft:   merge.Overwrite(s.Minecraft, o.Minecraft),
		Logo:        merge.Overwrite(s.Logo, o.Logo),
		MirrorList:  merge.Overwrite(s.MirrorList, o.MirrorList),
		ModList:     merge.OverwriteIfPresent(s.ModList, o.ModList),
	}
}

// ForgeLibrary is a library as listed by Forge installers.
type ForgeLibrary struct {
	Library
	ServerReq *bool    `json:"serverreq,omitempty"`
	ClientReq *bool    `json:"clientreq,omitempty"`
	Checksums []string `json:"checksums,omitempty"`
	Comment   *string  `json:"comment,omitempty"`
}

// Merge merges the embedded library, appends checksums and takes the
// remaining fields when set.
func (l ForgeLibrary) Merge(o ForgeLibrary) ForgeLibrary {
	return ForgeLibrary{
		Library:   l.Library.Merge(o.Library),
		ServerReq: merge.OverwriteIfPresent(l.ServerReq, o.ServerReq),
		ClientReq: merge.OverwriteIfPresent(l.ClientReq, o.ClientReq),
		Checksums: merge.Append(l.Checksums, o.Checksums),
		Comment:   merge.OverwriteIfPresent(l.Comment, o.Comment),
	}
}

// ForgeOptional is an optional mod offered by old installers.
type ForgeOptional struct {
	Name     *string          `json:"name,omitempty"`
	Client   *bool            `json:"client,omitempty"`
	Server   *bool            `json:"server,omitempty"`
	Default  *bool            `json:"default,omitempty"`
	Inject   *bool            `json:"inject,omitempty"`
	Desc     *string          `json:"desc,omitempty"`
	URL      *string          `json:"url,omitempty"`
	Artifact *GradleSpecifier `json:"artifact,omitempty"`
	Maven    *string          `json:"maven,omitempty"`
}

// =============================================================================
// Legacy Profile
// =============================================================================

// LegacyVersionInfo is the full version document embedded in the oldest
// installer profiles.
type LegacyVersionInfo struct {
	Comment                []string       `json:"_comment_,omitempty"`
	ID                     string         `json:"id" validate:"required"`
	Time                   string         `json:"time"`
	ReleaseTime            string         `json:"releaseTime"`
	Type                   string         `json:"type" validate:"required"`
	MinecraftArguments     string         `json:"minecraftArguments" validate:"required"`
	MinimumLauncherVersion *int           `json:"minimumLauncherVersion,omitempty"`
	Assets                 *string        `json:"assets,omitempty"`
	MainClass              string         `json:"mainClass" validate:"required"`
	Libraries              []ForgeLibrary `json:"libraries" validate:"dive"`
	InheritsFrom           *string        `json:"inheritsFrom,omitempty"`
	ProcessArguments       *string        `json:"processArguments,omitempty"`
	Jar                    *string        `json:"jar,omitempty"`
	Logging                *struct{}      `json:"logging,omitempty"`
}

// LegacyInstallerProfile is the install_profile.json shape of builds
// before the versionInfo split.
type LegacyInstallerProfile struct {
	Comment     []string          `json:"_comment_,omitempty"`
	Install     InstallSection    `json:"install"`
	VersionInfo LegacyVersionInfo `json:"versionInfo"`
	Optionals   []ForgeOptional   `json:"optionals,omitempty"`
}

// =============================================================================
// V1 Profile
// =============================================================================

// ForgeVersionFile is the libraries override carried by V1 profiles.
type ForgeVersionFile struct {
	Libraries    []ForgeLibrary `json:"libraries,omitempty" validate:"omitempty,dive"`
	InheritsFrom *string        `json:"inheritsFrom,omitempty"`
	Jar          *string        `json:"jar,omitempty"`
}

// Merge appends libraries and takes the remaining fields when set.
func (f ForgeVersionFile) Merge(o ForgeVersionFile) ForgeVersionFile {
	return ForgeVersionFile{
		Libraries:    merge.Append(f.Libraries, o.Libraries),
		InheritsFrom: merge.OverwriteIfPresent(f.InheritsFrom, o.InheritsFrom),
		Jar:          merge.OverwriteIfPresent(f.Jar, o.Jar),
	}
}

// InstallerProfileV1 is the install_profile.json shape used up to 1.12.
type InstallerProfileV1 struct {
	Install     InstallSection   `json:"install"`
	VersionInfo ForgeVersionFile `json:"versionInfo"`
	Optionals   []ForgeOptional  `json:"optionals,omitempty"`
}

// Merge merges both sections and appends optionals.
func (p InstallerProfileV1) Merge(o InstallerProfileV1) InstallerProfileV1 {
	return InstallerProfileV1{
		Install:     p.Install.Merge(o.Install),
		VersionInfo: p.VersionInfo.Merge(o.VersionInfo),
		Optionals:   merge.Append(p.Optionals, o.Optionals),
	}
}

// =============================================================================
// V2 Profile
// =============================================================================

// DataSpec is a client/server value pair in a V2 profile's data block.
type DataSpec struct {
	Client *string `json:"client,omitempty"`
	Server *string `json:"server,omitempty"`
}

// Merge takes each side the overlay sets.
func (d DataSpec) Merge(o DataSpec) DataSpec {
	return DataSpec{
		Client: merge.OverwriteIfPresent(d.Client, o.Client),
		Server: merge.OverwriteIfPresent(d.Server, o.Server),
	}
}

// ProcessorSpec is a post-install processor invocation.
type ProcessorSpec struct {
	Jar       *string           `json:"jar,omitempty"`
	Classpath []string          `json:"classpath,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Outputs   map[string]string `json:"outputs,omitempty"`
	Sides     []string          `json:"sides,omitempty"`
}

// Merge appends list fields and merges outputs by key.
func (p ProcessorSpec) Merge(o ProcessorSpec) ProcessorSpec {
	return ProcessorSpec{
		Jar:       merge.OverwriteIfPresent(p.Jar, o.Jar),
		Classpath: merge.Append(p.Classpath, o.Classpath),
		Args:      merge.Append(p.Args, o.Args),
		Outputs:   merge.OverwriteKeyed(p.Outputs, o.Outputs),
		Sides:     merge.Append(p.Sides, o.Sides),
	}
}

// InstallerProfileV2 is the install_profile.json shape used from 1.13 on.
type InstallerProfileV2 struct {
	Comment       []string            `json:"_comment_,omitempty"`
	Spec          *int                `json:"spec" validate:"required"`
	Profile       *string             `json:"profile" validate:"required"`
	Version       *string             `json:"version" validate:"required"`
	Icon          *string             `json:"icon,omitempty"`
	JSON          *string             `json:"json" validate:"required"`
	Path          *GradleSpecifier    `json:"path,omitempty"`
	Logo          *string             `json:"logo,omitempty"`
	Minecraft     *string             `json:"minecraft" validate:"required"`
	Welcome       *string             `json:"welcome,omitempty"`
	Data          map[string]DataSpec `json:"data,omitempty"`
	Processors    []ProcessorSpec     `json:"processors,omitempty"`
	Libraries     []MojangLibrary     `json:"libraries,omitempty" validate:"omitempty,dive"`
	MirrorList    *string             `json:"mirrorList,omitempty"`
	ServerJarPath *string             `json:"serverJarPath,omitempty"`
}

// Merge layers o onto p. The comment is never merged.
func (p InstallerProfileV2) Merge(o InstallerProfileV2) InstallerProfileV2 {
	return InstallerProfileV2{
		Comment:       p.Comment,
		Spec:          merge.OverwriteIfPresent(p.Spec, o.Spec),
		Profile:       merge.OverwriteIfPresent(p.Profile, o.Profile),
		Version:       merge.OverwriteIfPresent(p.Version, o.Version),
		Icon:          merge.OverwriteIfPresent(p.Icon, o.Icon),
		JSON:          merge.OverwriteIfPresent(p.JSON, o.JSON),
		Path:          merge.OverwriteIfPresent(p.Path, o.Path),
		Logo:          merge.OverwriteIfPresent(p.Logo, o.Logo),
		Minecraft:     merge.OverwriteIfPresent(p.Minecraft, o.Minecraft),
		Welcome:       merge.OverwriteIfPresent(p.Welcome, o.Welcome),
		Data:          merge.RecurseMap(p.Data, o.Data),
		Processors:    merge.Append(p.Processors, o.Processors),
		Libraries:     merge.Append(p.Libraries, o.Libraries),
		MirrorList:    merge.OverwriteIfPresent(p.MirrorList, o.MirrorList),
		ServerJarPath: merge.OverwriteIfPresent(p.ServerJarPath, o.ServerJarPath),
	}
}

// =============================================================================
// Variant Parsing
// =============================================================================

// ProfileVariant identifies which installer profile shape a document matched.
type ProfileVariant int

const (
	VariantUnrecognized ProfileVariant = iota
	VariantLegacy
	VariantV1
	VariantV2
)

func (v ProfileVariant) String() string {
	switch v {
	case VariantLegacy:
		return "legacy"
	case VariantV1:
		return "v1"
	case VariantV2:
		return "v2"
	default:
		return "unrecognized"
	}
}

// InstallerProfile is a parsed install_profile.json. Exactly one of the
// variant fields is set, matching Variant.
type InstallerProfile struct {
	Variant ProfileVariant
	Legacy  *LegacyInstallerProfile
	V1      *InstallerProfileV1
	V2      *InstallerProfileV2
}

// Document returns the parsed document of the matched variant.
func (p InstallerProfile) Document() any {
	switch p.Variant {
	case VariantLegacy:
		return p.Legacy
	case VariantV1:
		return p.V1
	case VariantV2:
		return p.V2
	default:
		return nil
	}
}

// profileAttempts is the fixed order variants are tried in.
var profileAttempts = []struct {
	variant ProfileVariant
	parse   func([]byte, *InstallerProfile) error
}{
	{VariantV2, func(b []byte, p *InstallerProfile) error {
		var v InstallerProfileV2
		if err := Decode(b, &v, false); err != nil {
			return err
		}
		p.V2 = &v
		return nil
	}},
	{VariantV1, func(b []byte, p *InstallerProfile) error {
		var v InstallerProfileV1
		if err := Decode(b, &v, true); err != nil {
			return err
		}
		p.V1 = &v
		return nil
	}},
	{VariantLegacy, func(b []byte, p *InstallerProfile) error {
		var v LegacyInstallerProfile
		if err := Decode(b, &v, true); err != nil {
			return err
		}
		p.Legacy = &v
		return nil
	}},
}

// ParseInstallerProfile tries every known profile shape in turn and returns
// the first that matches. V2 profiles tolerate unknown keys and are told
// apart by their required spec, json and minecraft fields; the older shapes
// decode strictly. When none match, the result
// is VariantUnrecognized and the INVALID_MANIFEST error wraps the joined
// failure of every attempt.
func ParseInstallerProfile(body []byte) (InstallerProfile, error) {
	var errs []error
	for _, attempt := range profileAttempts {
		var p InstallerProfile
		if err := attempt.parse(body, &p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", attempt.variant, err))
			continue
		}
		p.Variant = attempt.variant
		return p, nil
	}
	return InstallerProfile{Variant: VariantUnrecognized},
		mcerrors.Dataf(errors.Join(errs...), "install profile matches no known shape")
}
