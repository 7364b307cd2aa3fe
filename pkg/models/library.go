package models

import "github.com/PrismLauncher/mcmeta/pkg/merge"

// MojangArtifact is a downloadable file referenced by a library.
type MojangArtifact struct {
	SHA1 *string `json:"sha1,omitempty"`
	Size *int    `json:"size,omitempty"`
	URL  string  `json:"url" validate:"required"`
	Path *string `json:"path,omitempty"`
}

// Merge overwrites the URL and takes every optional field the overlay sets.
func (a MojangArtifact) Merge(o MojangArtifact) MojangArtifact {
	return MojangArtifact{
		SHA1: merge.OverwriteIfPresent(a.SHA1, o.SHA1),
		Size: merge.OverwriteIfPresent(a.Size, o.Size),
		URL:  merge.Overwrite(a.URL, o.URL),
		Path: merge.OverwriteIfPresent(a.Path, o.Path),
	}
}

// MojangAssets references an asset index.
type MojangAssets struct {
	SHA1      *string `json:"sha1,omitempty"`
	Size      *int    `json:"size,omitempty"`
	URL       string  `json:"url" validate:"required"`
	ID        string  `json:"id" validate:"required"`
	TotalSize int     `json:"totalSize"`
}

// MojangLibraryExtractRules lists paths excluded when unpacking natives.
type MojangLibraryExtractRules struct {
	Exclude []string `json:"exclude"`
}

// Merge appends the overlay's exclusions.
func (e MojangLibraryExtractRules) Merge(o MojangLibraryExtractRules) MojangLibraryExtractRules {
	return MojangLibraryExtractRules{Exclude: merge.Append(e.Exclude, o.Exclude)}
}

// MojangLibraryDownloads holds the main artifact and classifier artifacts.
type MojangLibraryDownloads struct {
	Artifact    *MojangArtifact           `json:"artifact,omitempty"`
	Classifiers map[string]MojangArtifact `json:"classifiers,omitempty" validate:"omitempty,dive"`
}

// Merge replaces the artifact when the overlay has one and merges
// classifiers key-wise.
func (d MojangLibraryDownloads) Merge(o MojangLibraryDownloads) MojangLibraryDownloads {
	return MojangLibraryDownloads{
		Artifact:    merge.OverwriteIfPresent(d.Artifact, o.Artifact),
		Classifiers: merge.RecurseMap(d.Classifiers, o.Classifiers),
	}
}

// OSRule restricts a rule to an operating system.
type OSRule struct {
	Name    string  `json:"name,omitempty" validate:"omitempty,osname"`
	Version *string `json:"version,omitempty"`
	Arch    *string `json:"arch,omitempty"`
}

// Merge overwrites the name and takes the overlay's version and arch when set.
func (r OSRule) Merge(o OSRule) OSRule {
	return OSRule{
		Name:    merge.Overwrite(r.Name, o.Name),
		Version: merge.OverwriteIfPresent(r.Version, o.Version),
		Arch:    merge.OverwriteIfPresent(r.Arch, o.Arch),
	}
}

// MojangRule allows or disallows a library, optionally per OS.
type MojangRule struct {
	Action string  `json:"action" validate:"ruleaction"`
	OS     *OSRule `json:"os,omitempty"`
}

// Merge overwrites the action and merges the OS restriction.
func (r MojangRule) Merge(o MojangRule) MojangRule {
	return MojangRule{
		Action: merge.Overwrite(r.Action, o.Action),
		OS:     merge.Recurse(r.OS, o.OS),
	}
}

// MojangRules is an ordered rule list. Merging appends.
type MojangRules []MojangRule

// Merge appends the overlay's rules.
func (r MojangRules) Merge(o MojangRules) MojangRules {
	return merge.Append(r, o)
}

// MojangLibrary is a library entry as found in Mojang version documents.
type MojangLibrary struct {
	Extract   *MojangLibraryExtractRules `json:"extract,omitempty"`
	Name      *GradleSpecifier           `json:"name,omitempty"`
	Downloads *MojangLibraryDownloads    `json:"downloads,omitempty"`
	Natives   map[string]string          `json:"natives,omitempty"`
	Rules     MojangRules                `json:"rules,omitempty" validate:"omitempty,dive"`
}

// Merge recurses into every present field.
func (l MojangLibrary) Merge(o MojangLibrary) MojangLibrary {
	return MojangLibrary{
		Extract:   merge.Recurse(l.Extract, o.Extract),
		Name:      merge.Recurse(l.Name, o.Name),
		Downloads: merge.Recurse(l.Downloads, o.Downloads),
		Natives:   merge.OverwriteKeyed(l.Natives, o.Natives),
		Rules:     l.Rules.Merge(o.Rules),
	}
}

// Library is a library entry in a published meta version. It extends
// [MojangLibrary] with a maven base URL and a launcher hint.
type Library struct {
	MojangLibrary
	URL     *string `json:"url,omitempty"`
	MMCHint *string `json:"MMC-hint,omitempty"`
}

// Merge merges the embedded library and takes URL and hint when set.
func (l Library) Merge(o Library) Library {
	return Library{
		MojangLibrary: l.MojangLibrary.Merge(o.MojangLibrary),
		URL:           merge.OverwriteIfPresent(l.URL, o.URL),
		MMCHint:       merge.OverwriteIfPresent(l.MMCHint, o.MMCHint),
	}
}

// Dependency names another component a meta version requires or conflicts with.
type Dependency struct {
	UID      string  `json:"uid" validate:"required"`
	Equals   *string `json:"equals,omitempty"`
	Suggests *string `json:"suggests,omitempty"`
}

// Merge overwrites the uid and takes constraints the overlay sets.
func (d Dependency) Merge(o Dependency) Dependency {
	return Dependency{
		UID:      merge.Overwrite(d.UID, o.UID),
		Equals:   merge.OverwriteIfPresent(d.Equals, o.Equals),
		Suggests: merge.OverwriteIfPresent(d.Suggests, o.Suggests),
	}
}
