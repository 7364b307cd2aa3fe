package models

import (
	"strings"
	"testing"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

const legacyProfile = `{
  "install": {
    "profileName": "Forge",
    "target": "1.6.4-Forge9.11.1.965",
    "path": "net.minecraftforge:minecraftforge:9.11.1.965",
    "version": "Forge 9.11.1.965",
    "filePath": "minecraftforge-universal-1.6.4-9.11.1.965.jar",
    "welcome": "Welcome to the simple Forge installer.",
    "minecraft": "1.6.4",
    "logo": "/big_logo.png",
    "mirrorList": "http://files.minecraftforge.net/mirror-brand.list"
  },
  "versionInfo": {
    "id": "1.6.4-Forge9.11.1.965",
    "time": "2013-12-06T02:27:18-0500",
    "releaseTime": "1960-01-01T00:00:00-0700",
    "type": "release",
    "minecraftArguments": "--username ${auth_player_name} --tweakClass cpw.mods.fml.common.launcher.FMLTweaker",
    "minimumLauncherVersion": 8,
    "assets": "legacy",
    "mainClass": "net.minecraft.launchwrapper.Launch",
    "libraries": [
      {"name": "net.minecraftforge:minecraftforge:9.11.1.965", "url": "http://files.minecraftforge.net/maven/"},
      {"name": "net.minecraft:launchwrapper:1.8", "serverreq": true},
      {"name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.0", "natives": {"linux": "natives-linux"}, "extract": {"exclude": ["META-INF/"]}, "rules": [{"action": "allow"}, {"action": "disallow", "os": {"name": "osx"}}]}
    ]
  }
}`

const v1Profile = `{
  "install": {
    "profileName": "forge",
    "target": "1.12.2-forge1.12.2-14.23.5.2847",
    "path": "net.minecraftforge:forge:1.12.2-14.23.5.2847",
    "version": "forge-1.12.2-14.23.5.2847",
    "filePath": "forge-1.12.2-14.23.5.2847-universal.jar",
    "welcome": "Welcome to the simple forge installer.",
    "minecraft": "1.12.2",
    "logo": "/big_logo.png",
    "mirrorList": "http://files.minecraftforge.net/mirror-brand.list",
    "modList": "none"
  },
  "versionInfo": {
    "inheritsFrom": "1.12.2",
    "jar": "1.12.2",
    "libraries": [{"name": "net.minecraftforge:forge:1.12.2-14.23.5.2847", "url": "https://maven.minecraftforge.net/"}]
  },
  "optionals": [{"name": "Mercurius", "client": true, "artifact": "net.minecraftforge:MercuriusUpdater:1.11.2"}]
}`

const v2Profile = `{
  "_comment_": ["Please do not automate the download and installation of Forge."],
  "spec": 0,
  "profile": "forge",
  "version": "1.16.5-forge-36.2.39",
  "icon": "data:image/png;base64,",
  "json": "/version.json",
  "path": "net.minecraftforge:forge:1.16.5-36.2.39",
  "logo": "/big_logo.png",
  "minecraft": "1.16.5",
  "welcome": "Welcome to the simple forge installer.",
  "data": {"MAPPINGS": {"client": "[de.oceanlabs.mcp:mcp_config:1.16.5-20210115.111550:mappings@txt]", "server": "[de.oceanlabs.mcp:mcp_config:1.16.5-20210115.111550:mappings@txt]"}},
  "processors": [{"jar": "net.minecraftforge:installertools:1.1.11", "classpath": ["net.md-5:SpecialSource:1.8.3"], "args": ["--task", "MCP_DATA"], "outputs": {"{MC_SLIM}": "{MC_SLIM_SHA}"}}],
  "libraries": [{"name": "net.minecraftforge:installertools:1.1.11", "downloads": {"artifact": {"path": "net/minecraftforge/installertools/1.1.11/installertools-1.1.11.jar", "url": "https://maven.minecraftforge.net/net/minecraftforge/installertools/1.1.11/installertools-1.1.11.jar", "sha1": "e32bb1c0c9cc2e3f16d3b4d4c1b9d4c1b9d4c1b9", "size": 123}}}],
  "mirrorList": "https://files.minecraftforge.net/mirrors-2.0.json",
  "serverJarPath": "{LIBRARY_DIR}/net/minecraft/server/{MINECRAFT_VERSION}/server-{MINECRAFT_VERSION}.jar"
}`

func TestParseInstallerProfile(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ProfileVariant
	}{
		{"v2", v2Profile, VariantV2},
		{"v2 with unmodelled key", strings.Replace(v2Profile, `"spec": 0,`, `"spec": 0, "hideExtract": true,`, 1), VariantV2},
		{"v1", v1Profile, VariantV1},
		{"legacy falls back past newer shapes", legacyProfile, VariantLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseInstallerProfile([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Variant != tt.want {
				t.Fatalf("Variant = %s, want %s", p.Variant, tt.want)
			}
			if p.Document() == nil {
				t.Error("Document() is nil for a matched profile")
			}
		})
	}
}

func TestParseInstallerProfileFields(t *testing.T) {
	p, err := ParseInstallerProfile([]byte(legacyProfile))
	if err != nil {
		t.Fatal(err)
	}
	libs := p.Legacy.VersionInfo.Libraries
	if len(libs) != 3 {
		t.Fatalf("libraries = %d, want 3", len(libs))
	}
	if libs[1].ServerReq == nil || !*libs[1].ServerReq {
		t.Error("serverreq not decoded")
	}
	if len(libs[2].Rules) != 2 || libs[2].Rules[1].OS.Name != "osx" {
		t.Errorf("rules = %+v", libs[2].Rules)
	}

	p, err = ParseInstallerProfile([]byte(v2Profile))
	if err != nil {
		t.Fatal(err)
	}
	if p.V2.Spec == nil || *p.V2.Spec != 0 {
		t.Errorf("spec = %v, want 0", p.V2.Spec)
	}
	if got := p.V2.Processors[0].Outputs["{MC_SLIM}"]; got != "{MC_SLIM_SHA}" {
		t.Errorf("outputs = %v", p.V2.Processors[0].Outputs)
	}
}

func TestParseInstallerProfileUnrecognized(t *testing.T) {
	bodies := []string{
		`{"something": "else"}`,
		`{"install": {"profileName": "x"}}`,
		`not json`,
	}
	for _, body := range bodies {
		p, err := ParseInstallerProfile([]byte(body))
		if err == nil {
			t.Errorf("%s: expected error", body)
			continue
		}
		if p.Variant != VariantUnrecognized {
			t.Errorf("%s: Variant = %s", body, p.Variant)
		}
		if mcerrors.ClassOf(err) != mcerrors.DataError {
			t.Errorf("%s: class = %s, want data_error", body, mcerrors.ClassOf(err))
		}
	}
}

func TestInstallerProfileV2Merge(t *testing.T) {
	spec, profile := 1, "forge"
	a := InstallerProfileV2{
		Spec:       &spec,
		Data:       map[string]DataSpec{"MAPPINGS": {Client: ptr("a")}},
		Processors: []ProcessorSpec{{Args: []string{"--x"}}},
	}
	b := InstallerProfileV2{
		Profile:    &profile,
		Data:       map[string]DataSpec{"MAPPINGS": {Server: ptr("b")}},
		Processors: []ProcessorSpec{{Args: []string{"--y"}}},
	}
	got := a.Merge(b)
	if *got.Spec != 1 || *got.Profile != "forge" {
		t.Errorf("scalars = %v %v", got.Spec, got.Profile)
	}
	if m := got.Data["MAPPINGS"]; m.Client == nil || m.Server == nil {
		t.Errorf("data not merged key-wise: %+v", m)
	}
	if len(got.Processors) != 2 {
		t.Errorf("processors = %d, want 2", len(got.Processors))
	}
}

func ptr[T any](v T) *T { return &v }
