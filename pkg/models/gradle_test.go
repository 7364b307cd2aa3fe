package models

import (
	"encoding/json"
	"testing"
)

func TestParseGradleSpecifier(t *testing.T) {
	tests := []struct {
		in       string
		want     GradleSpecifier
		wantPath string
		wantErr  bool
	}{
		{
			in:       "net.minecraftforge:forge:1.12.2-14.23.5.2860",
			want:     GradleSpecifier{"net.minecraftforge", "forge", "1.12.2-14.23.5.2860", "jar", ""},
			wantPath: "net/minecraftforge/forge/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860.jar",
		},
		{
			in:       "org.lwjgl:lwjgl:3.3.1:natives-linux",
			want:     GradleSpecifier{"org.lwjgl", "lwjgl", "3.3.1", "jar", "natives-linux"},
			wantPath: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar",
		},
		{
			in:       "de.oceanlabs.mcp:mcp_config:1.16.5-20210115.111550@zip",
			want:     GradleSpecifier{"de.oceanlabs.mcp", "mcp_config", "1.16.5-20210115.111550", "zip", ""},
			wantPath: "de/oceanlabs/mcp/mcp_config/1.16.5-20210115.111550/mcp_config-1.16.5-20210115.111550.zip",
		},
		{in: "only:two", wantErr: true},
		{in: "a:b:c:d:e", wantErr: true},
		{in: "a::c", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGradleSpecifier(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
			if got.Path() != tt.wantPath {
				t.Errorf("Path() = %q, want %q", got.Path(), tt.wantPath)
			}
		})
	}
}

func TestGradleSpecifierJSON(t *testing.T) {
	var lib MojangLibrary
	if err := json.Unmarshal([]byte(`{"name":"org.lwjgl:lwjgl:3.3.1"}`), &lib); err != nil {
		t.Fatal(err)
	}
	if lib.Name == nil || !lib.Name.IsLWJGL() {
		t.Fatalf("Name = %+v", lib.Name)
	}
	out, err := json.Marshal(lib)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"name":"org.lwjgl:lwjgl:3.3.1"}` {
		t.Errorf("Marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"name":"broken"}`), &lib); err == nil {
		t.Error("expected error for malformed specifier")
	}
}
