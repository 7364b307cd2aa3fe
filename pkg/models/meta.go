package models

import (
	"time"

	"github.com/PrismLauncher/mcmeta/pkg/merge"
)

// MetaFormatVersion is the format version stamped on published meta versions.
const MetaFormatVersion = 1

// MetaVersion is a launcher-facing component version. Component overrides
// are layered onto a base version with [MetaVersion.Merge].
type MetaVersion struct {
	FormatVersion         int           `json:"formatVersion"`
	Name                  string        `json:"name" validate:"required"`
	Version               string        `json:"version" validate:"required"`
	UID                   string        `json:"uid" validate:"required"`
	Type                  *string       `json:"type,omitempty"`
	Order                 *int          `json:"order,omitempty"`
	Volatile              *bool         `json:"volatile,omitempty"`
	Requires              []Dependency  `json:"requires,omitempty" validate:"omitempty,dive"`
	Conflicts             []Dependency  `json:"conflicts,omitempty" validate:"omitempty,dive"`
	Libraries             []Library     `json:"libraries,omitempty" validate:"omitempty,dive"`
	AssetIndex            *MojangAssets `json:"assetIndex,omitempty"`
	MavenFiles            []Library     `json:"mavenFiles,omitempty" validate:"omitempty,dive"`
	MainJar               *Library      `json:"mainJar,omitempty"`
	JarMods               []Library     `json:"jarMods,omitempty" validate:"omitempty,dive"`
	MainClass             *string       `json:"mainClass,omitempty"`
	AppletClass           *string       `json:"appletClass,omitempty"`
	MinecraftArguments    *string       `json:"minecraftArguments,omitempty"`
	ReleaseTime           *time.Time    `json:"releaseTime,omitempty"`
	CompatibleJavaMajors  []int         `json:"compatibleJavaMajors,omitempty"`
	AdditionalTraits      []string      `json:"+traits,omitempty"`
	AdditionalTweakers    []string      `json:"+tweakers,omitempty"`
	AdditionalJVMArgs     []string      `json:"+jvmArgs,omitempty"`
}

// Merge layers o onto v. Identity fields are overwritten, optional scalars
// are taken when set, library lists and "+" lists are appended and the
// main jar is merged recursively.
func (v MetaVersion) Merge(o MetaVersion) MetaVersion {
	return MetaVersion{
		FormatVersion:        merge.Overwrite(v.FormatVersion, o.FormatVersion),
		Name:                 merge.Overwrite(v.Name, o.Name),
		Version:              merge.Overwrite(v.Version, o.Version),
		UID:                  merge.Overwrite(v.UID, o.UID),
		Type:                 merge.OverwriteIfPresent(v.Type, o.Type),
		Order:                merge.OverwriteIfPresent(v.Order, o.Order),
		Volatile:             merge.OverwriteIfPresent(v.Volatile, o.Volatile),
		Requires:             merge.Append(v.Requires, o.Requires),
		Conflicts:            merge.Append(v.Conflicts, o.Conflicts),
		Libraries:            merge.Append(v.Libraries, o.Libraries),
		AssetIndex:           merge.OverwriteIfPresent(v.AssetIndex, o.AssetIndex),
		MavenFiles:           merge.Append(v.MavenFiles, o.MavenFiles),
		MainJar:              merge.Recurse(v.MainJar, o.MainJar),
		JarMods:              merge.Append(v.JarMods, o.JarMods),
		MainClass:            merge.OverwriteIfPresent(v.MainClass, o.MainClass),
		AppletClass:          merge.OverwriteIfPresent(v.AppletClass, o.AppletClass),
		MinecraftArguments:   merge.OverwriteIfPresent(v.MinecraftArguments, o.MinecraftArguments),
		ReleaseTime:          merge.OverwriteIfPresent(v.ReleaseTime, o.ReleaseTime),
		CompatibleJavaMajors: merge.Append(v.CompatibleJavaMajors, o.CompatibleJavaMajors),
		AdditionalTraits:     merge.Append(v.AdditionalTraits, o.AdditionalTraits),
		AdditionalTweakers:   merge.Append(v.AdditionalTweakers, o.AdditionalTweakers),
		AdditionalJVMArgs:    merge.Append(v.AdditionalJVMArgs, o.AdditionalJVMArgs),
	}
}
