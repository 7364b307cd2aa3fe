// Package changegate skips expensive regeneration when an artifact has not
// changed since the last successful run.
//
// The gate hashes a canonical JSON rendering of the artifact and compares it
// with the digest recorded next to the artifact in storage:
//
//	g := changegate.New(store, "forge/derived_index.json")
//	digest, regenerate, err := g.Check(ctx, indexBytes)
//	if regenerate {
//	    // ... do the work ...
//	    err = g.Record(ctx, digest)
//	}
//
// The record lives at "<artifact>.last_index.json" so that it travels with
// the artifact it describes.
package changegate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/storage"
)

// Record is the persisted result of the last successful regeneration.
type Record struct {
	UpdateTime time.Time `json:"update_time"`
	Path       string    `json:"path"`
	Hash       string    `json:"hash"`
}

// Digest returns the sha256 of the canonical JSON form of data.
//
// Canonical means object keys are sorted and insignificant whitespace is
// dropped, so two documents that differ only in key order or formatting
// share a digest. Numbers keep their literal text.
func Digest(data []byte) (string, error) {
	canon, err := Canonicalize(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// DigestValue is Digest for a Go value.
func DigestValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode %T", v)
	}
	return Digest(data)
}

// Canonicalize re-encodes a JSON document with sorted object keys.
func Canonicalize(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeDecode, err, "canonicalize")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "canonicalize")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ShouldRegenerate reports whether work keyed by digest must run again.
// A missing stored record always means regenerate.
func ShouldRegenerate(digest string, stored *Record) bool {
	return stored == nil || stored.Hash != digest
}

// Gate ties a digest record to one artifact key.
type Gate struct {
	store    storage.Store
	artifact string
	now      func() time.Time
}

// New returns a gate for the artifact stored at key.
func New(store storage.Store, key string) *Gate {
	return &Gate{store: store, artifact: key, now: time.Now}
}

// RecordKey is the storage key of the digest record.
func (g *Gate) RecordKey() string {
	return strings.TrimSuffix(g.artifact, ".json") + ".last_index.json"
}

// Load returns the stored record, or nil when there is none. An unreadable
// record is treated as missing.
func (g *Gate) Load(ctx context.Context) (*Record, error) {
	data, err := g.store.Read(ctx, g.RecordKey())
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Hash == "" {
		return nil, nil
	}
	return &rec, nil
}

// Check digests data and compares it with the stored record.
func (g *Gate) Check(ctx context.Context, data []byte) (digest string, regenerate bool, err error) {
	digest, err = Digest(data)
	if err != nil {
		return "", false, err
	}
	stored, err := g.Load(ctx)
	if err != nil {
		return "", false, err
	}
	return digest, ShouldRegenerate(digest, stored), nil
}

// Record persists digest as the last successful regeneration.
func (g *Gate) Record(ctx context.Context, digest string) error {
	data, err := json.MarshalIndent(Record{
		UpdateTime: g.now().UTC(),
		Path:       g.artifact,
		Hash:       digest,
	}, "", "  ")
	if err != nil {
		return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "encode gate record")
	}
	return g.store.Write(ctx, g.RecordKey(), data)
}
