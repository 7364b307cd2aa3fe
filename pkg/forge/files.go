package forge

import (
	"encoding/hex"
	"regexp"
	"sort"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/models"
)

var nonWord = regexp.MustCompile(`\W`)

// FilesFromManifest turns a build's meta.json into one [models.ForgeFile]
// per classifier. Hashes are stripped of non-word characters and entries
// without a 32 character hex hash are dropped. A classifier with two valid
// files is a DUPLICATE_ENTRY error.
func FilesFromManifest(longVersion string, meta *models.ForgeVersionMeta) (map[string]models.ForgeFile, error) {
	files := make(map[string]models.ForgeFile)
	if meta == nil {
		return files, nil
	}
	for classifier, exts := range meta.Classifiers {
		extensions := make([]string, 0, len(exts))
		for ext := range exts {
			extensions = append(extensions, ext)
		}
		sort.Strings(extensions)

		for _, ext := range extensions {
			hash := nonWord.ReplaceAllString(exts[ext], "")
			if _, err := hex.DecodeString(hash); err != nil || len(hash) != 32 {
				continue
			}
			if prev, dup := files[classifier]; dup {
				return nil, mcerrors.New(mcerrors.ErrCodeDuplicate,
					"%s: multiple files for classifier %s (%s, %s)", longVersion, classifier, prev.Extension, ext)
			}
			files[classifier] = models.ForgeFile{Classifier: classifier, Hash: hash, Extension: ext}
		}
	}
	return files, nil
}
