package forge

import (
	"regexp"
	"slices"
	"strconv"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

var longVersionPattern = regexp.MustCompile(
	`^(?P<mc>[0-9a-zA-Z_\.]+)-(?P<ver>[0-9\.]+\.(?P<build>[0-9]+))(-(?P<branch>[a-zA-Z0-9\.]+))?$`)

// badVersions are long versions upstream published broken.
var badVersions = []string{"1.12.2-14.23.5.2851"}

// IsBadVersion reports whether lv is on the deny-list.
func IsBadVersion(lv string) bool {
	return slices.Contains(badVersions, lv)
}

// LongVersion is a parsed "<mc>-<version>[-<branch>]" build identifier.
type LongVersion struct {
	MCVersion string
	Version   string
	Build     int
	Branch    string
}

// ParseLongVersion splits a long version. A string that does not match the
// build grammar is an INVALID_VERSION error.
func ParseLongVersion(lv string) (LongVersion, error) {
	m := longVersionPattern.FindStringSubmatch(lv)
	if m == nil {
		return LongVersion{}, mcerrors.New(mcerrors.ErrCodeInvalidVersion, "forge long version %q does not parse", lv)
	}
	build, err := strconv.Atoi(m[longVersionPattern.SubexpIndex("build")])
	if err != nil {
		return LongVersion{}, mcerrors.Wrap(mcerrors.ErrCodeInvalidVersion, err, "forge long version %q: build number", lv)
	}
	return LongVersion{
		MCVersion: m[longVersionPattern.SubexpIndex("mc")],
		Version:   m[longVersionPattern.SubexpIndex("ver")],
		Build:     build,
		Branch:    m[longVersionPattern.SubexpIndex("branch")],
	}, nil
}

// String reassembles the long version.
func (v LongVersion) String() string {
	s := v.MCVersion + "-" + v.Version
	if v.Branch != "" {
		s += "-" + v.Branch
	}
	return s
}

// BranchPtr returns the branch, or nil when there is none.
func (v LongVersion) BranchPtr() *string {
	if v.Branch == "" {
		return nil
	}
	b := v.Branch
	return &b
}
