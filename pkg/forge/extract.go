package forge

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/models"
	"github.com/PrismLauncher/mcmeta/pkg/observability"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
)

// Archive entry names read from installer jars.
const (
	entryVersion = "version.json"
	entryProfile = "install_profile.json"
)

// skippedLegacyMC is a game version whose bare archives are never processed.
const skippedLegacyMC = "1.6.1"

// ArchiveSource downloads build archives.
type ArchiveSource interface {
	DownloadArchive(ctx context.Context, url string) ([]byte, error)
}

// Extractor pulls installer manifests and archive digests out of build
// archives. Downloaded archives are kept in the store so a build is only
// downloaded once.
type Extractor struct {
	archives ArchiveSource
	store    storage.Store
	logger   *log.Logger
}

// NewExtractor returns an extractor persisting into store.
func NewExtractor(archives ArchiveSource, store storage.Store, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Extractor{archives: archives, store: store, logger: logger}
}

// Extract processes one build. Installer builds get their version and
// installer manifests plus installer info persisted. Bare archive builds are
// described into legacy when it is non-nil.
func (x *Extractor) Extract(ctx context.Context, e models.ForgeEntry, legacy *legacyCollector) error {
	v := models.NewForgeProcessedVersion(e)
	lv := e.LongVersion
	if v.URL() == "" {
		x.logger.Debug("skipping build without archive", "version", lv)
		return nil
	}
	if v.UsesInstaller() {
		return x.extractInstaller(ctx, v, lv)
	}
	if v.MCVersionSane == skippedLegacyMC {
		x.logger.Debug("skipping legacy build", "version", lv)
		return nil
	}
	if legacy == nil {
		return nil
	}
	archive, err := x.archive(ctx, v)
	if err != nil {
		return err
	}
	info, err := LegacyInfo(archive)
	if err != nil {
		return mcerrors.Dataf(err, "%s", lv)
	}
	legacy.add(lv, info)
	return nil
}

func (x *Extractor) extractInstaller(ctx context.Context, v models.ForgeProcessedVersion, lv string) error {
	haveProfile, err := x.store.Exists(ctx, InstallerManifestKey(lv))
	if err != nil {
		return err
	}
	haveInfo, err := x.store.Exists(ctx, InstallerInfoKey(lv))
	if err != nil {
		return err
	}
	if haveProfile && haveInfo {
		return nil
	}

	archive, err := x.archive(ctx, v)
	if err != nil {
		return err
	}

	if !haveProfile {
		if err := x.extractManifests(ctx, v, lv, archive); err != nil {
			return err
		}
	}
	if !haveInfo {
		data, err := models.EncodeIndent(Digest(archive).InstallerInfo())
		if err != nil {
			return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "%s", lv)
		}
		if err := x.store.Write(ctx, InstallerInfoKey(lv), data); err != nil {
			return err
		}
	}
	return nil
}

func (x *Extractor) extractManifests(ctx context.Context, v models.ForgeProcessedVersion, lv string, archive []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return mcerrors.Dataf(err, "%s: open installer", lv)
	}

	if body, err := readEntry(zr, entryVersion); err == nil {
		var mv models.MojangVersion
		if err := models.Decode(body, &mv, false); err != nil {
			return mcerrors.Dataf(err, "%s: %s", lv, entryVersion)
		}
		data, err := models.EncodeIndent(mv)
		if err != nil {
			return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "%s", lv)
		}
		if err := x.store.Write(ctx, VersionManifestKey(lv), data); err != nil {
			return err
		}
	} else if !mcerrors.Is(err, mcerrors.ErrCodeFileNotFound) {
		return mcerrors.Dataf(err, "%s: %s", lv, entryVersion)
	}

	body, err := readEntry(zr, entryProfile)
	if err != nil {
		return x.unusable(ctx, v, lv, models.VariantUnrecognized, err)
	}
	profile, err := models.ParseInstallerProfile(body)
	if err != nil {
		return x.unusable(ctx, v, lv, profile.Variant, err)
	}
	observability.Sync().OnExtract(ctx, lv, profile.Variant.String(), nil)
	x.logger.Debug("parsed installer profile", "version", lv, "variant", profile.Variant)

	data, err := models.EncodeIndent(profile.Document())
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "%s", lv)
	}
	return x.store.Write(ctx, InstallerManifestKey(lv), data)
}

// unusable reports a build whose installer profile is missing or matches no
// known variant. It is a data error for supported builds and a skip
// otherwise.
func (x *Extractor) unusable(ctx context.Context, v models.ForgeProcessedVersion, lv string, variant models.ProfileVariant, err error) error {
	observability.Sync().OnExtract(ctx, lv, variant.String(), err)
	if !v.IsSupported() {
		x.logger.Debug("skipping unsupported build", "version", lv, "err", err)
		return nil
	}
	return mcerrors.Dataf(err, "%s: %s", lv, entryProfile)
}

// archive returns the build's archive, downloading it on first use.
func (x *Extractor) archive(ctx context.Context, v models.ForgeProcessedVersion) ([]byte, error) {
	key := JarKey(v.Filename())
	data, err := x.store.Read(ctx, key)
	if err == nil {
		return data, nil
	}
	if !storage.IsNotFound(err) {
		return nil, err
	}

	x.logger.Debug("downloading archive", "version", v.LongVersion, "url", v.URL())
	data, err = x.archives.DownloadArchive(ctx, v.URL())
	if err != nil {
		return nil, err
	}
	if err := x.store.Write(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeFileNotFound, err, "%s", name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

