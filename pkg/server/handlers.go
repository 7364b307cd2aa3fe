package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PrismLauncher/mcmeta/pkg/buildinfo"
	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/forge"
	"github.com/PrismLauncher/mcmeta/pkg/mojang"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
)

// Document keys served by fixed routes.
const (
	mojangManifest  = mojang.KeyManifest
	forgeMaven      = forge.KeyMavenMetadata
	forgePromotions = forge.KeyPromotions
	forgeIndex      = forge.KeyDerivedIndex
)

// Per-version keys served by {version} routes.
var (
	mojangVersion          = mojang.VersionKey
	forgeVersionManifest   = forge.VersionManifestKey
	forgeFilesManifest     = forge.FilesManifestKey
	forgeInstallerManifest = forge.InstallerManifestKey
)

// envelope wraps every document response.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

func (s *Server) document(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serve(w, r, key, "Document does not exist")
	}
}

func (s *Server) version(keyFor func(string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := chi.URLParam(r, "version")
		if err := mcerrors.ValidateVersionID(v); err != nil {
			writeError(w, http.StatusBadRequest, mcerrors.UserMessage(err))
			return
		}
		s.serve(w, r, keyFor(v), "Version "+v+" does not exist")
	}
}

// serve writes the stored document at key. Sync-time failures never reach
// the client: a missing or unreadable document is a 404, a backend failure
// a bare 500.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, key, missing string) {
	data, err := s.store.Read(r.Context(), key)
	switch {
	case storage.IsNotFound(err):
		writeError(w, http.StatusNotFound, missing)
		return
	case err != nil:
		s.logger.Error("read failed", "key", key, "err", err, "request_id", requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if !json.Valid(data) {
		s.logger.Warn("stored document is not JSON", "key", key)
		writeError(w, http.StatusNotFound, missing)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

type health struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, health{Status: "ok", Build: buildinfo.Get()})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Data: json.RawMessage("null"), Error: &msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
