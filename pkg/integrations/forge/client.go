package forge

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/PrismLauncher/mcmeta/pkg/cache"
	"github.com/PrismLauncher/mcmeta/pkg/integrations"
	"github.com/PrismLauncher/mcmeta/pkg/models"
)

// Default upstream locations.
const (
	DefaultMavenMetadataURL = "https://files.minecraftforge.net/net/minecraftforge/forge/maven-metadata.json"
	DefaultPromotionsURL    = "https://files.minecraftforge.net/net/minecraftforge/forge/promotions_slim.json"
	DefaultFilesBaseURL     = "https://files.minecraftforge.net/net/minecraftforge/forge"
	DefaultMavenBaseURL     = models.ForgeMavenURL
)

// URLs locates the Forge upstream documents. Empty fields take the defaults.
type URLs struct {
	MavenMetadata string
	Promotions    string
	FilesBase     string
	MavenBase     string
}

func (u URLs) withDefaults() URLs {
	if u.MavenMetadata == "" {
		u.MavenMetadata = DefaultMavenMetadataURL
	}
	if u.Promotions == "" {
		u.Promotions = DefaultPromotionsURL
	}
	if u.FilesBase == "" {
		u.FilesBase = DefaultFilesBaseURL
	}
	if u.MavenBase == "" {
		u.MavenBase = DefaultMavenBaseURL
	}
	return u
}

// Client provides access to the Forge upstream.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	archives *integrations.Client
	urls     URLs
}

// NewClient creates a Forge client caching per-build manifests in c for ttl.
func NewClient(c cache.Cache, ttl time.Duration, urls URLs) *Client {
	archives := integrations.NewClient(nil, "forge-archives", 0, nil)
	archives.SetHTTPClient(integrations.NewDownloadClient())
	return &Client{
		Client:   integrations.NewClient(c, "forge", ttl, integrations.JSONHeaders),
		archives: archives,
		urls:     urls.withDefaults(),
	}
}

// SetRateLimit caps requests to both the file server and the maven.
func (c *Client) SetRateLimit(rps float64) {
	c.Client.SetRateLimit(rps)
	c.archives.SetRateLimit(rps)
}

// SetSlots shares one in-flight request bound between the file server and
// the maven.
func (c *Client) SetSlots(s *semaphore.Weighted) {
	c.Client.SetSlots(s)
	c.archives.SetSlots(s)
}

// FetchMavenMetadata returns the game version to long versions listing.
func (c *Client) FetchMavenMetadata(ctx context.Context) (models.ForgeMavenMetadata, error) {
	body, err := c.Download(ctx, c.urls.MavenMetadata)
	if err != nil {
		return nil, err
	}
	var m models.ForgeMavenMetadata
	if err := models.Decode(body, &m, false); err != nil {
		return nil, err
	}
	return m, nil
}

// FetchPromotions returns the promotions document.
func (c *Client) FetchPromotions(ctx context.Context) (*models.ForgeMavenPromotions, error) {
	body, err := c.Download(ctx, c.urls.Promotions)
	if err != nil {
		return nil, err
	}
	var p models.ForgeMavenPromotions
	if err := models.Decode(body, &p, false); err != nil {
		return nil, err
	}
	return &p, nil
}

// FilesManifestURL returns the meta.json location of a build.
func (c *Client) FilesManifestURL(longVersion string) string {
	return integrations.JoinURL(c.urls.FilesBase, longVersion, "meta.json")
}

// FetchFilesManifest returns the per-build files manifest.
func (c *Client) FetchFilesManifest(ctx context.Context, longVersion string, refresh bool) (*models.ForgeVersionMeta, error) {
	body, err := c.FetchCached(ctx, "meta:"+longVersion, c.FilesManifestURL(longVersion), refresh)
	if err != nil {
		return nil, err
	}
	var m models.ForgeVersionMeta
	if err := models.Decode(body, &m, false); err != nil {
		return nil, err
	}
	return &m, nil
}

// ArchiveURL maps a maven URL onto the configured maven base.
func (c *Client) ArchiveURL(url string) string {
	if c.urls.MavenBase == DefaultMavenBaseURL {
		return url
	}
	return strings.Replace(url, DefaultMavenBaseURL, strings.TrimRight(c.urls.MavenBase, "/"), 1)
}

// DownloadArchive fetches an installer or universal archive.
func (c *Client) DownloadArchive(ctx context.Context, url string) ([]byte, error) {
	return c.archives.Download(ctx, c.ArchiveURL(url))
}
