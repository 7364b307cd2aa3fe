// Package mojang mirrors the Minecraft version manifest and every version
// document it lists, and publishes each version as a launcher component.
package mojang

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/models"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
	"github.com/PrismLauncher/mcmeta/pkg/syncer"
)

// Source is the name the syncer reports under.
const Source = "mojang"

// Component identity of published versions.
const (
	ComponentUID  = "net.minecraft"
	ComponentName = "Minecraft"
)

// Storage keys.
const (
	KeyManifest    = "mojang/version_manifest_v2.json"
	KeyRejected    = "mojang/rejected.json"
	PrefixVersions = "mojang/versions/"
)

// Rejection records a version whose upstream document was invalid. It is
// not fetched again until its manifest entry changes.
type Rejection struct {
	Time  time.Time `json:"time"`
	Error string    `json:"error"`
}

// VersionKey is where the version document of id is mirrored.
func VersionKey(id string) string {
	return PrefixVersions + id + ".json"
}

// Upstream is everything the syncer fetches from Mojang.
type Upstream interface {
	FetchManifest(ctx context.Context) (*models.MojangVersionManifest, error)
	FetchVersion(ctx context.Context, url string, refresh bool) (*models.MojangVersion, error)
}

// Options configures a Syncer.
type Options struct {
	Concurrency int
	// GeneratedDir is the key prefix published components are written under.
	GeneratedDir string
	Logger       *log.Logger
}

// Syncer mirrors Mojang metadata into a store.
type Syncer struct {
	upstream Upstream
	store    storage.Store
	opts     Options
}

// New returns a syncer writing into store.
func New(upstream Upstream, store storage.Store, opts Options) *Syncer {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.GeneratedDir == "" {
		opts.GeneratedDir = "generated"
	}
	return &Syncer{upstream: upstream, store: store, opts: opts}
}

// ComponentKey is where the published component of id is written.
func (s *Syncer) ComponentKey(id string) string {
	return path.Join(s.opts.GeneratedDir, ComponentUID, id+".json")
}

// Report summarizes one sync.
type Report struct {
	RunID    string
	Listed   int
	Pending  int
	Result   *syncer.Result
	Duration time.Duration
}

// Run mirrors every version that is new or changed upstream. The manifest
// is persisted after the batch. Versions that failed transiently or were
// skipped keep their previous entry so they are retried next cycle; invalid
// versions are recorded as rejected and left alone until they change.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	logger := s.opts.Logger.With("source", Source, "run", report.RunID[:8])

	remote, err := s.upstream.FetchManifest(ctx)
	if err != nil {
		return report, err
	}
	stored, err := s.storedManifest(ctx)
	if err != nil {
		return report, err
	}
	rejected, err := s.rejected(ctx)
	if err != nil {
		return report, err
	}
	local, err := s.localRecords(ctx, stored, rejected)
	if err != nil {
		return report, err
	}

	pending := syncer.Diff(records(remote), local)
	report.Listed = len(remote.Versions)
	report.Pending = len(pending)
	logger.Info("diffed manifest", "listed", report.Listed, "pending", report.Pending)

	result := syncer.Run(ctx, pending, syncer.Options{
		Source:      Source,
		Concurrency: s.opts.Concurrency,
		Logger:      logger,
	}, s.syncVersion)
	report.Result = result
	if err := result.Err(); err != nil {
		return report, err
	}

	if err := s.writeRejected(ctx, updateRejected(rejected, remote, result, start)); err != nil {
		return report, err
	}
	data, err := models.EncodeIndent(persistable(remote, stored, result))
	if err != nil {
		return report, mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode manifest")
	}
	if err := s.store.Write(ctx, KeyManifest, data); err != nil {
		return report, err
	}
	report.Duration = time.Since(start)
	logger.Info("manifest written", "synced", len(result.Succeeded), "failed", len(result.Failures), "took", report.Duration)
	return report, nil
}

// syncVersion fetches, validates and persists one version, then publishes
// it as a component.
func (s *Syncer) syncVersion(ctx context.Context, rec syncer.IdentityRecord) error {
	v, err := s.upstream.FetchVersion(ctx, rec.SourceURL, true)
	if err != nil {
		return err
	}
	if v.ID != rec.ID {
		return mcerrors.New(mcerrors.ErrCodeInvalidManifest, "version document for %s reports id %s", rec.ID, v.ID)
	}

	data, err := models.EncodeIndent(v)
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode %s", rec.ID)
	}
	if err := s.store.Write(ctx, VersionKey(rec.ID), data); err != nil {
		return err
	}

	meta, err := v.ToMetaVersion(ComponentName, ComponentUID, rec.ID)
	if err != nil {
		return mcerrors.Dataf(err, "convert %s", rec.ID)
	}
	data, err = models.EncodeIndent(meta)
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode component %s", rec.ID)
	}
	return s.store.Write(ctx, s.ComponentKey(rec.ID), data)
}

// storedManifest returns the previously persisted manifest, or nil. An
// unreadable manifest is treated as missing so every version is re-checked.
func (s *Syncer) storedManifest(ctx context.Context) (*models.MojangVersionManifest, error) {
	data, err := s.store.Read(ctx, KeyManifest)
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m models.MojangVersionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.opts.Logger.Warn("stored manifest unreadable, resyncing all versions", "err", err)
		return nil, nil
	}
	return &m, nil
}

// rejected returns the recorded rejections. An unreadable record is treated
// as empty so rejected versions are tried again.
func (s *Syncer) rejected(ctx context.Context) (map[string]Rejection, error) {
	data, err := s.store.Read(ctx, KeyRejected)
	if storage.IsNotFound(err) {
		return map[string]Rejection{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := map[string]Rejection{}
	if err := json.Unmarshal(data, &out); err != nil {
		s.opts.Logger.Warn("rejected versions record unreadable, retrying them", "err", err)
		return map[string]Rejection{}, nil
	}
	return out, nil
}

func (s *Syncer) writeRejected(ctx context.Context, rejected map[string]Rejection) error {
	if len(rejected) == 0 {
		return s.store.Delete(ctx, KeyRejected)
	}
	data, err := models.EncodeIndent(rejected)
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode rejected versions")
	}
	return s.store.Write(ctx, KeyRejected, data)
}

// updateRejected drops versions that synced or left the manifest and adds
// the ones that failed with a data error.
func updateRejected(prev map[string]Rejection, remote *models.MojangVersionManifest, result *syncer.Result, now time.Time) map[string]Rejection {
	listed := make(map[string]bool, len(remote.Versions))
	for _, v := range remote.Versions {
		listed[v.ID] = true
	}
	out := make(map[string]Rejection, len(prev))
	for id, r := range prev {
		if listed[id] {
			out[id] = r
		}
	}
	for _, rec := range result.Succeeded {
		delete(out, rec.ID)
	}
	for _, f := range result.Failures {
		if f.Class == mcerrors.DataError {
			out[f.Record.ID] = Rejection{Time: now.UTC(), Error: f.Err.Error()}
		}
	}
	return out
}

// localRecords returns the stored manifest entries whose version document
// is present or was rejected.
func (s *Syncer) localRecords(ctx context.Context, stored *models.MojangVersionManifest, rejected map[string]Rejection) ([]syncer.IdentityRecord, error) {
	if stored == nil {
		return nil, nil
	}
	keys, err := s.store.List(ctx, PrefixVersions)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[strings.TrimSuffix(strings.TrimPrefix(k, PrefixVersions), ".json")] = true
	}

	var local []syncer.IdentityRecord
	for _, r := range records(stored) {
		if _, bad := rejected[r.ID]; present[r.ID] || bad {
			local = append(local, r)
		}
	}
	return local, nil
}

func records(m *models.MojangVersionManifest) []syncer.IdentityRecord {
	out := make([]syncer.IdentityRecord, 0, len(m.Versions))
	for _, v := range m.Versions {
		out = append(out, syncer.IdentityRecord{ID: v.ID, Timestamp: timestamp(v), SourceURL: v.URL})
	}
	return out
}

// timestamp is the entry's update time, falling back to its release time.
func timestamp(v models.MojangManifestVersion) time.Time {
	if !v.Time.IsZero() {
		return v.Time
	}
	return v.ReleaseTime
}

// persistable returns the manifest to store after a batch: the remote
// manifest, except that versions which must be retried keep their previous
// entry, or are left out when they had none. Data errors are not retried.
func persistable(remote, stored *models.MojangVersionManifest, result *syncer.Result) *models.MojangVersionManifest {
	retry := make(map[string]bool)
	for _, f := range result.Failures {
		if f.Class != mcerrors.DataError {
			retry[f.Record.ID] = true
		}
	}
	for _, r := range result.Skipped {
		retry[r.ID] = true
	}
	if len(retry) == 0 {
		return remote
	}

	out := &models.MojangVersionManifest{Latest: remote.Latest}
	for _, v := range remote.Versions {
		if !retry[v.ID] {
			out.Versions = append(out.Versions, v)
			continue
		}
		if stored == nil {
			continue
		}
		if prev, ok := stored.Lookup(v.ID); ok {
			out.Versions = append(out.Versions, prev)
		}
	}
	return out
}
