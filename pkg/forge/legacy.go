package forge

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/models"
)

// Digests holds the content hashes and size of an archive.
type Digests struct {
	SHA1   string
	SHA256 string
	Size   int64
}

// Digest hashes data with both algorithms the metadata records.
func Digest(data []byte) Digests {
	s1 := sha1.Sum(data)
	s256 := sha256.Sum256(data)
	return Digests{
		SHA1:   hex.EncodeToString(s1[:]),
		SHA256: hex.EncodeToString(s256[:]),
		Size:   int64(len(data)),
	}
}

// InstallerInfo converts d into the stored installer info document.
func (d Digests) InstallerInfo() models.InstallerInfo {
	return models.InstallerInfo{SHA1Hash: &d.SHA1, SHA256Hash: &d.SHA256, Size: &d.Size}
}

// LegacyInfo describes a bare archive: its digests, size and the newest
// modification time among its entries.
func LegacyInfo(archive []byte) (models.ForgeLegacyInfo, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return models.ForgeLegacyInfo{}, mcerrors.Dataf(err, "open legacy archive")
	}

	var newest time.Time
	for _, f := range zr.File {
		if t := f.Modified; t.After(newest) {
			newest = t
		}
	}

	d := Digest(archive)
	info := models.ForgeLegacyInfo{Size: &d.Size, SHA1: &d.SHA1, SHA256: &d.SHA256}
	if !newest.IsZero() {
		utc := newest.UTC()
		info.ReleaseTime = &utc
	}
	return info, nil
}

// legacyCollector accumulates legacy info from concurrent extraction tasks.
type legacyCollector struct {
	mu   sync.Mutex
	list models.ForgeLegacyInfoList
}

func newLegacyCollector() *legacyCollector {
	return &legacyCollector{list: models.ForgeLegacyInfoList{Number: make(map[string]models.ForgeLegacyInfo)}}
}

func (c *legacyCollector) add(longVersion string, info models.ForgeLegacyInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.Number[longVersion] = info
}

func (c *legacyCollector) result() models.ForgeLegacyInfoList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list
}
