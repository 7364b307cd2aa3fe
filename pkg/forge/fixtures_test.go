package forge

import (
	"archive/zip"
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/models"
)

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
  }
}`

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
      {"name": "net.minecraft:launchwrapper:1.8", "serverreq": true}
    ]
  }
}`

const versionJSON = `{
  "id": "1.12.2-forge-14.23.5.2847",
  "inheritsFrom": "1.12.2",
  "mainClass": "net.minecraft.launchwrapper.Launch",
  "type": "release"
}`

var archiveTime = time.Date(2013, 12, 6, 7, 27, 18, 0, time.UTC)

// zipArchive builds an in-memory zip holding files, every entry stamped
// with mod.
func zipArchive(t *testing.T, files map[string]string, mod time.Time) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: mod})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// fakeUpstream serves canned Forge documents and counts requests.
type fakeUpstream struct {
	mu        sync.Mutex
	listing   models.ForgeMavenMetadata
	promos    map[string]string
	meta      map[string]*models.ForgeVersionMeta
	metaErr   map[string]error
	archives  map[string][]byte
	metaHits  map[string]int
	downloads map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		listing:   models.ForgeMavenMetadata{},
		promos:    map[string]string{},
		meta:      map[string]*models.ForgeVersionMeta{},
		metaErr:   map[string]error{},
		archives:  map[string][]byte{},
		metaHits:  map[string]int{},
		downloads: map[string]int{},
	}
}

// addBuild lists lv under mc with the given classifier to extension files
// and registers archive as the download of its installer or universal file.
func (f *fakeUpstream) addBuild(mc, lv string, files map[string]string, archive []byte) {
	f.listing[mc] = append(f.listing[mc], lv)
	meta := &models.ForgeVersionMeta{Classifiers: map[string]map[string]string{}}
	for classifier, ext := range files {
		meta.Classifiers[classifier] = map[string]string{ext: md5}
		file := models.ForgeFile{Classifier: classifier, Extension: ext}
		f.archives[file.URL(lv)] = archive
	}
	f.meta[lv] = meta
}

func (f *fakeUpstream) FetchMavenMetadata(context.Context) (models.ForgeMavenMetadata, error) {
	return f.listing, nil
}

func (f *fakeUpstream) FetchPromotions(context.Context) (*models.ForgeMavenPromotions, error) {
	return &models.ForgeMavenPromotions{Homepage: "https://files.minecraftforge.net", Promos: f.promos}, nil
}

func (f *fakeUpstream) FetchFilesManifest(_ context.Context, lv string, _ bool) (*models.ForgeVersionMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaHits[lv]++
	if err := f.metaErr[lv]; err != nil {
		return nil, err
	}
	m, ok := f.meta[lv]
	if !ok {
		return nil, mcerrors.New(mcerrors.ErrCodeNotFound, "no meta for %s", lv)
	}
	return m, nil
}

func (f *fakeUpstream) FilesManifestURL(lv string) string {
	return "https://files.example/" + lv + "/meta.json"
}

func (f *fakeUpstream) DownloadArchive(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads[url]++
	data, ok := f.archives[url]
	if !ok {
		return nil, mcerrors.New(mcerrors.ErrCodeNotFound, "no archive at %s", url)
	}
	return data, nil
}

func (f *fakeUpstream) totalDownloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.downloads {
		n += c
	}
	return n
}
