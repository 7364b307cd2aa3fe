package mojang

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PrismLauncher/mcmeta/pkg/cache"
	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

const manifest = `{
  "latest": {"release": "1.20.1", "snapshot": "1.20.1"},
  "versions": [
    {"id": "1.20.1", "type": "release", "url": "%s/v1/packages/b/1.20.1.json", "time": "2023-06-12T13:25:51+00:00", "releaseTime": "2023-06-12T13:25:51+00:00", "sha1": "b", "complianceLevel": 1}
  ]
}`

func TestFetchManifestAndVersion(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mc/game/version_manifest_v2.json":
			fmt.Fprintf(w, manifest, srv.URL)
		case "/v1/packages/b/1.20.1.json":
			w.Write([]byte(`{"id": "1.20.1", "complianceLevel": 1, "minimumLauncherVersion": 21, "downloads": {"client": {"sha1": "c", "size": 1, "url": "https://piston-data.mojang.com/client.jar"}}}`))
		case "/bad.json":
			w.Write([]byte(`{"id": "x", "complianceLevel": 9}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	c := NewClient(fc, time.Hour, srv.URL+"/mc/game/version_manifest_v2.json")
	ctx := context.Background()

	m, err := c.FetchManifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := m.Lookup("1.20.1")
	if !ok {
		t.Fatalf("manifest = %+v", m)
	}

	v, err := c.FetchVersion(ctx, entry.URL, false)
	if err != nil {
		t.Fatal(err)
	}
	if v.ID != "1.20.1" {
		t.Errorf("version id = %q", v.ID)
	}

	_, err = c.FetchVersion(ctx, srv.URL+"/bad.json", false)
	if mcerrors.ClassOf(err) != mcerrors.DataError {
		t.Errorf("unsupported compliance level: class = %s", mcerrors.ClassOf(err))
	}
}

func TestDefaultManifestURL(t *testing.T) {
	c := NewClient(nil, 0, "")
	if c.manifestURL != DefaultManifestURL {
		t.Errorf("manifestURL = %q", c.manifestURL)
	}
}
