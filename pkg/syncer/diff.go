package syncer

import "time"

// IdentityRecord is one fetchable unit: a game version or a loader build.
type IdentityRecord struct {
	ID        string
	Timestamp time.Time
	SourceURL string
}

// Diff returns the remote records that are absent from local or newer than
// their local copy. Remote order is preserved and duplicate remote ids are
// reported once, at their first position.
func Diff(remote, local []IdentityRecord) []IdentityRecord {
	have := make(map[string]time.Time, len(local))
	for _, r := range local {
		have[r.ID] = r.Timestamp
	}

	seen := make(map[string]bool, len(remote))
	var pending []IdentityRecord
	for _, r := range remote {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		if ts, ok := have[r.ID]; ok && !ts.Before(r.Timestamp) {
			continue
		}
		pending = append(pending, r)
	}
	return pending
}
