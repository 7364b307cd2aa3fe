package mojang

import (
	"context"
	"time"

	"github.com/PrismLauncher/mcmeta/pkg/cache"
	"github.com/PrismLauncher/mcmeta/pkg/integrations"
	"github.com/PrismLauncher/mcmeta/pkg/models"
)

// DefaultManifestURL is the launcher's version manifest.
const DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

// Client provides access to Mojang's launcher metadata.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	manifestURL string
}

// NewClient creates a Mojang client caching version documents in c for ttl.
// An empty manifestURL selects [DefaultManifestURL].
func NewClient(c cache.Cache, ttl time.Duration, manifestURL string) *Client {
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}
	return &Client{
		Client:      integrations.NewClient(c, "mojang", ttl, integrations.JSONHeaders),
		manifestURL: manifestURL,
	}
}

// FetchManifest returns the version manifest.
func (c *Client) FetchManifest(ctx context.Context) (*models.MojangVersionManifest, error) {
	body, err := c.Download(ctx, c.manifestURL)
	if err != nil {
		return nil, err
	}
	var m models.MojangVersionManifest
	if err := models.Decode(body, &m, false); err != nil {
		return nil, err
	}
	return &m, nil
}

// FetchVersion returns the version document at url.
func (c *Client) FetchVersion(ctx context.Context, url string, refresh bool) (*models.MojangVersion, error) {
	body, err := c.FetchCached(ctx, url, url, refresh)
	if err != nil {
		return nil, err
	}
	var v models.MojangVersion
	if err := models.Decode(body, &v, false); err != nil {
		return nil, err
	}
	return &v, nil
}
