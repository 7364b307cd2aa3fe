package models

import (
	"encoding/json"
	"slices"
	"strings"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/merge"
)

// GradleSpecifier is a maven coordinate of the form
// "group:artifact:version[:classifier][@extension]".
// It is serialized as its string form.
type GradleSpecifier struct {
	Group      string
	Artifact   string
	Version    string
	Extension  string // "jar" unless given after '@'
	Classifier string // optional
}

// ParseGradleSpecifier parses s. The extension defaults to "jar".
func ParseGradleSpecifier(s string) (GradleSpecifier, error) {
	coords, ext, hasExt := strings.Cut(s, "@")
	parts := strings.Split(coords, ":")
	if len(parts) < 3 || len(parts) > 4 || slices.Contains(parts, "") {
		return GradleSpecifier{}, mcerrors.New(mcerrors.ErrCodeInvalidInput, "invalid Gradle specifier %q", s)
	}
	g := GradleSpecifier{
		Group:     parts[0],
		Artifact:  parts[1],
		Version:   parts[2],
		Extension: "jar",
	}
	if hasExt {
		g.Extension = ext
	}
	if len(parts) == 4 {
		g.Classifier = parts[3]
	}
	return g, nil
}

// String formats the coordinate, omitting the default "jar" extension.
func (g GradleSpecifier) String() string {
	var b strings.Builder
	b.WriteString(g.Group)
	b.WriteByte(':')
	b.WriteString(g.Artifact)
	b.WriteByte(':')
	b.WriteString(g.Version)
	if g.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(g.Classifier)
	}
	if g.Extension != "" && g.Extension != "jar" {
		b.WriteByte('@')
		b.WriteString(g.Extension)
	}
	return b.String()
}

// Filename returns the artifact file name, e.g. "lwjgl-3.3.1-natives-linux.jar".
func (g GradleSpecifier) Filename() string {
	if g.Classifier != "" {
		return g.Artifact + "-" + g.Version + "-" + g.Classifier + "." + g.Extension
	}
	return g.Artifact + "-" + g.Version + "." + g.Extension
}

// Base returns the repository directory of the artifact.
func (g GradleSpecifier) Base() string {
	return strings.ReplaceAll(g.Group, ".", "/") + "/" + g.Artifact + "/" + g.Version
}

// Path returns the repository-relative path of the artifact file.
func (g GradleSpecifier) Path() string {
	return g.Base() + "/" + g.Filename()
}

// IsLWJGL reports whether the artifact belongs to LWJGL or its input libraries.
func (g GradleSpecifier) IsLWJGL() bool {
	switch g.Group {
	case "org.lwjgl", "org.lwjgl.lwjgl", "net.java.jinput", "net.java.jutils":
		return true
	}
	return false
}

// IsLog4j reports whether the artifact belongs to Log4j.
func (g GradleSpecifier) IsLog4j() bool {
	return g.Group == "org.apache.logging.log4j"
}

// Merge overwrites every component with the overlay's.
func (g GradleSpecifier) Merge(o GradleSpecifier) GradleSpecifier {
	return GradleSpecifier{
		Group:      merge.Overwrite(g.Group, o.Group),
		Artifact:   merge.Overwrite(g.Artifact, o.Artifact),
		Version:    merge.Overwrite(g.Version, o.Version),
		Extension:  merge.Overwrite(g.Extension, o.Extension),
		Classifier: merge.Overwrite(g.Classifier, o.Classifier),
	}
}

// MarshalJSON encodes the specifier as a string.
func (g GradleSpecifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes the specifier from a string.
func (g *GradleSpecifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGradleSpecifier(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
