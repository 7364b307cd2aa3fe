package forge

import (
	"testing"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

func TestParseLongVersion(t *testing.T) {
	tests := []struct {
		lv      string
		mc      string
		version string
		build   int
		branch  string
	}{
		{"1.20.1-47.1.0", "1.20.1", "47.1.0", 0, ""},
		{"1.12.2-14.23.5.2860", "1.12.2", "14.23.5.2860", 2860, ""},
		{"1.7.10-10.13.4.1614-1.7.10", "1.7.10", "10.13.4.1614", 1614, "1.7.10"},
		{"1.7.10_pre4-10.12.2.1149-prerelease", "1.7.10_pre4", "10.12.2.1149", 1149, "prerelease"},
	}
	for _, tt := range tests {
		t.Run(tt.lv, func(t *testing.T) {
			v, err := ParseLongVersion(tt.lv)
			if err != nil {
				t.Fatalf("ParseLongVersion: %v", err)
			}
			if v.MCVersion != tt.mc || v.Version != tt.version || v.Build != tt.build || v.Branch != tt.branch {
				t.Errorf("got %+v", v)
			}
			if got := v.String(); got != tt.lv {
				t.Errorf("String() = %q, want %q", got, tt.lv)
			}
			again, err := ParseLongVersion(v.String())
			if err != nil || again != v {
				t.Errorf("round trip = %+v, %v", again, err)
			}
		})
	}
}

func TestParseLongVersionInvalid(t *testing.T) {
	for _, lv := range []string{"", "1.20.1", "1.20.1-47", "1.20.1-forge", "1.20.1-47.1.0-", "1.20.1-47.1.0-bad branch"} {
		_, err := ParseLongVersion(lv)
		if mcerrors.GetCode(err) != mcerrors.ErrCodeInvalidVersion {
			t.Errorf("ParseLongVersion(%q) err = %v, want INVALID_VERSION", lv, err)
		}
		if mcerrors.ClassOf(err) != mcerrors.DataError {
			t.Errorf("ParseLongVersion(%q) class = %s", lv, mcerrors.ClassOf(err))
		}
	}
}

func TestBranchPtr(t *testing.T) {
	if (LongVersion{}).BranchPtr() != nil {
		t.Error("empty branch should be nil")
	}
	if b := (LongVersion{Branch: "new"}).BranchPtr(); b == nil || *b != "new" {
		t.Errorf("BranchPtr = %v", b)
	}
}

func TestIsBadVersion(t *testing.T) {
	if !IsBadVersion("1.12.2-14.23.5.2851") {
		t.Error("deny-listed build not reported")
	}
	if IsBadVersion("1.12.2-14.23.5.2860") {
		t.Error("good build reported bad")
	}
}
