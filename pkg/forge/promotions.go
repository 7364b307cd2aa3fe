package forge

import (
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

var promotionPattern = regexp.MustCompile(`^(?P<mc>[^-]+)-(?P<promotion>latest|recommended)(-(?P<branch>[a-zA-Z0-9\.]+))?$`)

// Recommended maps a game version to the short version promoted as
// recommended for it.
type Recommended map[string]string

// ParsePromotions extracts the recommended set from promotion keys.
//
// Branch-scoped keys such as "1.20-recommended-forge" never count. "latest"
// promotions are ignored since latest is recomputed from build order.
// Malformed keys are logged and skipped.
func ParsePromotions(promos map[string]string, logger *log.Logger) Recommended {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := make([]string, 0, len(promos))
	for k := range promos {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := make(Recommended)
	for _, key := range keys {
		m := promotionPattern.FindStringSubmatch(key)
		switch {
		case m == nil:
			logger.Warn("skipping promotion, key did not parse", "key", key)
		case m[promotionPattern.SubexpIndex("mc")] == "":
			logger.Debug("skipping promotion without game version", "key", key)
		case m[promotionPattern.SubexpIndex("branch")] != "":
			logger.Debug("skipping branch-only promotion", "key", key)
		case m[promotionPattern.SubexpIndex("promotion")] == "recommended":
			rec[m[promotionPattern.SubexpIndex("mc")]] = promos[key]
			logger.Debug("added to recommended set", "mc", m[1], "version", promos[key])
		}
	}
	return rec
}

// Promotes reports whether the recommended promotion for mc names version.
// A promotion may omit the build number, in which case it names every build
// of that dotted prefix and the last one discovered wins.
func (r Recommended) Promotes(mc, version string) bool {
	promo, ok := r[mc]
	if !ok || promo == "" {
		return false
	}
	return version == promo || strings.HasPrefix(version, promo+".")
}
