package forge

import (
	"github.com/PrismLauncher/mcmeta/pkg/models"
)

// BuildIndex assembles the derived index from entries in discovery order.
//
// Deny-listed builds are dropped. Each game version lists its builds in the
// order given; recommended is the last build the promotions name and latest
// is always the last build listed.
func BuildIndex(entries []models.ForgeEntry, rec Recommended) *models.DerivedForgeIndex {
	idx := models.NewDerivedForgeIndex()
	for _, e := range entries {
		if IsBadVersion(e.LongVersion) {
			continue
		}
		recommended := rec.Promotes(e.MCVersion, e.Version)
		e.Recommended = &recommended
		e.Latest = nil
		idx.Versions[e.LongVersion] = e

		info := idx.ByMCVersion[e.MCVersion]
		info.Versions = append(info.Versions, e.LongVersion)
		if recommended {
			lv := e.LongVersion
			info.Recommended = &lv
		}
		idx.ByMCVersion[e.MCVersion] = info
	}
	ResolveLatest(idx)
	return idx
}

// ResolveLatest sets every game version's latest to its last listed build.
func ResolveLatest(idx *models.DerivedForgeIndex) {
	for mc, info := range idx.ByMCVersion {
		if len(info.Versions) == 0 {
			info.Latest = nil
		} else {
			lv := info.Versions[len(info.Versions)-1]
			info.Latest = &lv
		}
		idx.ByMCVersion[mc] = info
	}
}
