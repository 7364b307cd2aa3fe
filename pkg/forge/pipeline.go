package forge

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/PrismLauncher/mcmeta/pkg/changegate"
	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/models"
	"github.com/PrismLauncher/mcmeta/pkg/observability"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
	"github.com/PrismLauncher/mcmeta/pkg/syncer"
)

// Source is the name the pipeline reports under.
const Source = "forge"

// Upstream is everything the pipeline fetches from Forge.
type Upstream interface {
	ArchiveSource
	FetchMavenMetadata(ctx context.Context) (models.ForgeMavenMetadata, error)
	FetchPromotions(ctx context.Context) (*models.ForgeMavenPromotions, error)
	FetchFilesManifest(ctx context.Context, longVersion string, refresh bool) (*models.ForgeVersionMeta, error)
	FilesManifestURL(longVersion string) string
}

// Options configures a Pipeline.
type Options struct {
	// Concurrency bounds concurrent upstream fetches.
	Concurrency int
	Logger      *log.Logger
}

// Pipeline derives the Forge index and extracts installer manifests.
type Pipeline struct {
	upstream  Upstream
	store     storage.Store
	static    storage.Store
	extractor *Extractor
	opts      Options
}

// NewPipeline returns a pipeline persisting metadata into store and the
// legacy info list into static.
func NewPipeline(upstream Upstream, store, static storage.Store, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Pipeline{
		upstream:  upstream,
		store:     store,
		static:    static,
		extractor: NewExtractor(upstream, store, opts.Logger),
		opts:      opts,
	}
}

// Report summarizes one pipeline run.
type Report struct {
	RunID string
	Index *models.DerivedForgeIndex
	// Entries is the outcome of resolving every listed build.
	Entries *syncer.Result
	// Digest is the change gate digest of the derived index.
	Digest      string
	Regenerated bool
	// Extraction is nil when the change gate skipped extraction.
	Extraction *syncer.Result
	Duration   time.Duration
}

// Failures returns every per-build failure of the run.
func (r *Report) Failures() []syncer.Failure {
	var out []syncer.Failure
	if r.Entries != nil {
		out = append(out, r.Entries.Failures...)
	}
	if r.Extraction != nil {
		out = append(out, r.Extraction.Failures...)
	}
	return out
}

// Run executes one sync cycle. Per-build failures are reported in the
// Report; an error is returned only when the cycle could not continue.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	logger := p.opts.Logger.With("source", Source, "run", report.RunID[:8])

	promos, err := p.upstream.FetchPromotions(ctx)
	if err != nil {
		return report, err
	}
	recommended := ParsePromotions(promos.Promos, logger)

	listing, err := p.upstream.FetchMavenMetadata(ctx)
	if err != nil {
		return report, err
	}

	entries, result, err := p.resolveEntries(ctx, listing, logger)
	report.Entries = result
	if err != nil {
		return report, err
	}

	idx := BuildIndex(entries, recommended)
	report.Index = idx
	if err := models.Validate(idx); err != nil {
		return report, err
	}

	if err := p.writeJSON(ctx, KeyMavenMetadata, listing); err != nil {
		return report, err
	}
	if err := p.writeJSON(ctx, KeyPromotions, promos); err != nil {
		return report, err
	}
	indexData, err := models.EncodeIndent(idx)
	if err != nil {
		return report, mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode derived index")
	}
	if err := p.store.Write(ctx, KeyDerivedIndex, indexData); err != nil {
		return report, err
	}
	logger.Info("derived index written", "versions", len(idx.Versions), "mc_versions", len(idx.ByMCVersion))

	gate := changegate.New(p.store, KeyDerivedIndex)
	digest, regenerate, err := gate.Check(ctx, indexData)
	if err != nil {
		return report, err
	}
	report.Digest = digest
	report.Regenerated = regenerate
	observability.Sync().OnGateDecision(ctx, Source, regenerate)
	if !regenerate {
		logger.Info("derived index unchanged, skipping extraction", "hash", digest[:12])
		report.Duration = time.Since(start)
		return report, nil
	}

	extraction, legacy, err := p.extract(ctx, idx, logger)
	report.Extraction = extraction
	if err != nil {
		return report, err
	}

	retry := extraction.Count(mcerrors.Transient) + extraction.Count(mcerrors.Fatal) + len(extraction.Skipped)
	if retry > 0 {
		logger.Warn("extraction incomplete, index will be reprocessed next cycle", "builds", retry)
	} else if err := gate.Record(ctx, digest); err != nil {
		return report, err
	}

	// Legacy info is gathered once, so it is only written when no build
	// is waiting on a retry.
	if legacy != nil && retry == 0 && report.Entries.Count(mcerrors.Transient) == 0 {
		if err := p.writeLegacy(ctx, legacy.result(), logger); err != nil {
			return report, err
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}

// resolveEntries turns every listed build into a ForgeEntry, fetching the
// files manifests not yet stored. Entries are returned in discovery order:
// game versions sorted, builds in listing order.
func (p *Pipeline) resolveEntries(ctx context.Context, listing models.ForgeMavenMetadata, logger *log.Logger) ([]models.ForgeEntry, *syncer.Result, error) {
	mcVersions := make([]string, 0, len(listing))
	for mc := range listing {
		mcVersions = append(mcVersions, mc)
	}
	sort.Strings(mcVersions)

	var remote []syncer.IdentityRecord
	mcOf := make(map[string]string)
	for _, mc := range mcVersions {
		for _, lv := range listing[mc] {
			if _, dup := mcOf[lv]; dup {
				continue
			}
			mcOf[lv] = mc
			remote = append(remote, syncer.IdentityRecord{ID: lv, SourceURL: p.upstream.FilesManifestURL(lv)})
		}
	}

	local, err := p.storedManifests(ctx)
	if err != nil {
		return nil, nil, err
	}
	missing := make(map[string]bool)
	for _, r := range syncer.Diff(remote, local) {
		missing[r.ID] = true
	}
	logger.Info("resolving builds", "listed", len(remote), "new", len(missing))

	slot := make(map[string]int, len(remote))
	for i, r := range remote {
		slot[r.ID] = i
	}
	resolved := make([]*models.ForgeEntry, len(remote))

	result := syncer.Run(ctx, remote, syncer.Options{
		Source:      Source + "-builds",
		Concurrency: p.opts.Concurrency,
		Logger:      logger,
	}, func(ctx context.Context, rec syncer.IdentityRecord) error {
		e, err := p.resolveEntry(ctx, mcOf[rec.ID], rec.ID, missing[rec.ID])
		if err != nil {
			return err
		}
		resolved[slot[rec.ID]] = e
		return nil
	})
	if err := result.Err(); err != nil {
		return nil, result, err
	}

	entries := make([]models.ForgeEntry, 0, len(resolved))
	for _, e := range resolved {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, result, nil
}

func (p *Pipeline) resolveEntry(ctx context.Context, mc, lv string, fetch bool) (*models.ForgeEntry, error) {
	parsed, err := ParseLongVersion(lv)
	if err != nil {
		return nil, err
	}

	meta, err := p.filesManifest(ctx, lv, fetch)
	if err != nil {
		return nil, err
	}
	files, err := FilesFromManifest(lv, meta)
	if err != nil {
		return nil, err
	}
	return &models.ForgeEntry{
		LongVersion: lv,
		MCVersion:   mc,
		Version:     parsed.Version,
		Build:       parsed.Build,
		Branch:      parsed.BranchPtr(),
		Files:       files,
	}, nil
}

// filesManifest reads a stored files manifest, or fetches and stores it.
func (p *Pipeline) filesManifest(ctx context.Context, lv string, fetch bool) (*models.ForgeVersionMeta, error) {
	key := FilesManifestKey(lv)
	if !fetch {
		data, err := p.store.Read(ctx, key)
		switch {
		case err == nil:
			var meta models.ForgeVersionMeta
			if err := models.Decode(data, &meta, false); err == nil {
				return &meta, nil
			}
			p.opts.Logger.Warn("stored files manifest unreadable, refetching", "version", lv)
		case !storage.IsNotFound(err):
			return nil, err
		}
	}

	meta, err := p.upstream.FetchFilesManifest(ctx, lv, fetch)
	if err != nil {
		return nil, err
	}
	if err := p.writeJSON(ctx, key, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// storedManifests lists the builds whose files manifest is already stored.
func (p *Pipeline) storedManifests(ctx context.Context) ([]syncer.IdentityRecord, error) {
	keys, err := p.store.List(ctx, PrefixFilesManifests)
	if err != nil {
		return nil, err
	}
	local := make([]syncer.IdentityRecord, 0, len(keys))
	for _, k := range keys {
		lv := strings.TrimSuffix(strings.TrimPrefix(k, PrefixFilesManifests), ".json")
		local = append(local, syncer.IdentityRecord{ID: lv})
	}
	return local, nil
}

// extract runs the extractor over every indexed build. Legacy info is only
// collected when the static legacy list does not exist yet.
func (p *Pipeline) extract(ctx context.Context, idx *models.DerivedForgeIndex, logger *log.Logger) (*syncer.Result, *legacyCollector, error) {
	var legacy *legacyCollector
	haveLegacy, err := p.static.Exists(ctx, KeyLegacyInfo)
	if err != nil {
		return nil, nil, err
	}
	if !haveLegacy {
		legacy = newLegacyCollector()
	}

	var pending []syncer.IdentityRecord
	for _, mc := range sortedKeys(idx.ByMCVersion) {
		for _, lv := range idx.ByMCVersion[mc].Versions {
			pending = append(pending, syncer.IdentityRecord{ID: lv})
		}
	}
	logger.Info("extracting installer manifests", "builds", len(pending))

	result := syncer.Run(ctx, pending, syncer.Options{
		Source:      Source + "-extract",
		Concurrency: p.opts.Concurrency,
		Logger:      logger,
	}, func(ctx context.Context, rec syncer.IdentityRecord) error {
		return p.extractor.Extract(ctx, idx.Versions[rec.ID], legacy)
	})
	return result, legacy, result.Err()
}

func (p *Pipeline) writeLegacy(ctx context.Context, list models.ForgeLegacyInfoList, logger *log.Logger) error {
	data, err := models.EncodeIndent(list)
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode legacy info")
	}
	if err := p.static.Write(ctx, KeyLegacyInfo, data); err != nil {
		return err
	}
	logger.Info("legacy info written", "builds", len(list.Number))
	return nil
}

func (p *Pipeline) writeJSON(ctx context.Context, key string, v any) error {
	data, err := models.EncodeIndent(v)
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode %s", key)
	}
	return p.store.Write(ctx, key, data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
