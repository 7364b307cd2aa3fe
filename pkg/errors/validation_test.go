package errors

import (
	"strings"
	"testing"
)

func TestValidateVersionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"release", "1.20.1", false},
		{"snapshot", "23w31a", false},
		{"forge long version", "1.12.2-14.23.5.2860", false},
		{"forge with branch", "1.7.10-10.13.4.1614-1.7.10", false},
		{"pre release", "1.14_pre5", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"slash", "1.20/../x", true},
		{"dotdot", "..", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidVersion) {
				t.Errorf("expected INVALID_VERSION code, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "forge/derived_index.json", false},
		{"nested", "mojang/versions/1.20.1.json", false},
		{"dots in name", "forge/files_manifests/1.12.2-14.23.5.2860.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "forge/../../secret", true},
		{"backslash", "forge\\x.json", true},
		{"control", "forge/\x01.json", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://files.minecraftforge.net/net/minecraftforge/forge/maven-metadata.json", false},
		{"http://localhost:8080/x", false},
		{"", true},
		{"ftp://example.com", true},
		{"file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
