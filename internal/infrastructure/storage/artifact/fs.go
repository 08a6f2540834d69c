package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/techflow/citechain/internal/infrastructure/monitoring/logging"
	"github.com/techflow/citechain/pkg/errors"
)

// fsStore persists artifacts as files under a single base directory.
// Atomicity is provided by writing to a temp file in the same directory and
// renaming it into place; rename is atomic on POSIX filesystems, so an
// interrupted Save never leaves a partial artifact under its final name.
type fsStore struct {
	dir string
	log logging.Logger
}

// NewFSStore creates the base directory if needed and returns a
// filesystem-backed Store rooted there.
func NewFSStore(dir string, log logging.Logger) (Store, error) {
	if dir == "" {
		return nil, errors.InvalidParam("artifact directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create artifact directory").WithDetail(dir)
	}
	return &fsStore{dir: dir, log: log}, nil
}

func (s *fsStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *fsStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat artifact").WithDetail(key)
}

func (s *fsStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound.WithDetail(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read artifact").WithDetail(key)
	}
	return data, nil
}

func (s *fsStore) Save(_ context.Context, key string, data []byte) error {
	final := s.path(key)
	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create temp artifact").WithDetail(key)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write artifact").WithDetail(key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to close artifact").WithDetail(key)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to publish artifact").WithDetail(key)
	}
	s.log.Debug("artifact saved", logging.String("key", key), logging.Int("bytes", len(data)))
	return nil
}

func (s *fsStore) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to list artifacts").WithDetail(s.dir)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		// Skip directories and in-flight temp files.
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
