package forge

import (
	"reflect"
	"testing"

	"github.com/PrismLauncher/mcmeta/pkg/models"
)

func forgeEntry(t *testing.T, lv string) models.ForgeEntry {
	t.Helper()
	v, err := ParseLongVersion(lv)
	if err != nil {
		t.Fatal(err)
	}
	return models.ForgeEntry{
		LongVersion: lv,
		MCVersion:   v.MCVersion,
		Version:     v.Version,
		Build:       v.Build,
		Branch:      v.BranchPtr(),
	}
}

func TestBuildIndexRecommendedAndLatest(t *testing.T) {
	rec := ParsePromotions(map[string]string{
		"1.20-recommended":  "10.5",
		"1.20-latest-forge": "10.7",
	}, nil)
	idx := BuildIndex([]models.ForgeEntry{
		forgeEntry(t, "1.20-10.5.100"),
		forgeEntry(t, "1.20-10.7.200"),
	}, rec)

	info := idx.ByMCVersion["1.20"]
	if info.Recommended == nil || *info.Recommended != "1.20-10.5.100" {
		t.Errorf("recommended = %v", info.Recommended)
	}
	if info.Latest == nil || *info.Latest != "1.20-10.7.200" {
		t.Errorf("latest = %v", info.Latest)
	}
	if !reflect.DeepEqual(info.Versions, []string{"1.20-10.5.100", "1.20-10.7.200"}) {
		t.Errorf("versions = %v", info.Versions)
	}
	if r := idx.Versions["1.20-10.5.100"].Recommended; r == nil || !*r {
		t.Error("entry 1.20-10.5.100 not flagged recommended")
	}
	if r := idx.Versions["1.20-10.7.200"].Recommended; r == nil || *r {
		t.Error("entry 1.20-10.7.200 flagged recommended")
	}
}

func TestBuildIndexKeepsDiscoveryOrder(t *testing.T) {
	idx := BuildIndex([]models.ForgeEntry{
		forgeEntry(t, "1.20-10.7.200"),
		forgeEntry(t, "1.20-10.5.100"),
		forgeEntry(t, "1.19-9.0.1"),
	}, nil)

	info := idx.ByMCVersion["1.20"]
	if !reflect.DeepEqual(info.Versions, []string{"1.20-10.7.200", "1.20-10.5.100"}) {
		t.Errorf("versions = %v", info.Versions)
	}
	if *info.Latest != "1.20-10.5.100" {
		t.Errorf("latest = %s, want last discovered", *info.Latest)
	}
	if info.Recommended != nil {
		t.Errorf("recommended = %s without promotion", *info.Recommended)
	}
	if got := idx.ByMCVersion["1.19"].Latest; got == nil || *got != "1.19-9.0.1" {
		t.Errorf("1.19 latest = %v", got)
	}
}

func TestBuildIndexDenyList(t *testing.T) {
	idx := BuildIndex([]models.ForgeEntry{
		forgeEntry(t, "1.12.2-14.23.5.2850"),
		forgeEntry(t, "1.12.2-14.23.5.2851"),
	}, Recommended{"1.12.2": "14.23.5.2851"})

	if _, ok := idx.Versions["1.12.2-14.23.5.2851"]; ok {
		t.Error("deny-listed build in index")
	}
	info := idx.ByMCVersion["1.12.2"]
	if !reflect.DeepEqual(info.Versions, []string{"1.12.2-14.23.5.2850"}) {
		t.Errorf("versions = %v", info.Versions)
	}
	if info.Recommended != nil {
		t.Errorf("recommended = %s", *info.Recommended)
	}
}
