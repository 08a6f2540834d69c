// Package artifact implements the parameters-addressed artifact cache that
// makes every pipeline stage idempotent and resumable.  A Store is a flat key
// space of immutable blobs; keys are pure functions of (stage, parameters) so
// that re-running a stage with identical parameters hits the cache and
// changing any parameter produces a disjoint artifact, never an overwrite.
//
// Three backends are provided: local filesystem (the default for a single
// workstation run), MinIO object storage (shared output directories), and an
// in-memory store for tests.
package artifact

import (
	"context"
	"encoding/json"

	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

// ErrNotFound is returned by Load for keys that were never saved.
var ErrNotFound = errors.New(errors.ErrCodeArtifactNotFound, "artifact not found")

// Store is the artifact cache contract.  Writes are atomic per key: a reader
// either sees the complete artifact or none at all.  Concurrent writers to
// the same key are not supported and must be serialized externally.
type Store interface {
	// Exists reports whether key holds a complete artifact.
	Exists(ctx context.Context, key string) (bool, error)

	// Load returns the artifact bytes for key, or an error satisfying
	// errors.IsNotFound when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save atomically persists data under key.  Saving an existing key
	// replaces it; stages never do this because parameters are part of the key.
	Save(ctx context.Context, key string, data []byte) error

	// List returns all keys with the given prefix in lexicographic order.
	// Checkpoint keys embed a zero-padded batch index, so listing them
	// reconstructs processing order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// SaveJSON marshals v and saves it under key.
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode artifact").WithDetail(key)
	}
	return s.Save(ctx, key, data)
}

// LoadJSON loads key and unmarshals it into v.
func LoadJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrCodeArtifactCorrupt, "failed to decode artifact").WithDetail(key)
	}
	return nil
}

// LoadOrGenerate is the single idempotent stage helper used uniformly by
// every pipeline stage: if key exists, load it into out and report a cache
// hit without invoking compute; otherwise call compute, persist its result
// atomically under key, copy it into out, and report a miss.
//
// compute buffers its full result in memory before anything is persisted, so
// a failure partway through generation writes nothing (the no-partial-
// artifact rule).
func LoadOrGenerate(ctx context.Context, s Store, key string, log logging.Logger, out interface{}, compute func(ctx context.Context) (interface{}, error)) (hit bool, err error) {
	ok, err := s.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		log.Debug("artifact cache hit", logging.String("key", key))
		return true, LoadJSON(ctx, s, key, out)
	}

	log.Info("artifact missing, generating", logging.String("key", key))
	v, err := compute(ctx)
	if err != nil {
		return false, err
	}
	if err := SaveJSON(ctx, s, key, v); err != nil {
		return false, err
	}
	// Round-trip through the codec so callers observe exactly what a later
	// cache hit would load.
	return false, LoadJSON(ctx, s, key, out)
}
