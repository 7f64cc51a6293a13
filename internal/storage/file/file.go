// Package file implements storage.Store on top of a directory of JSON files,
// one file per key.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

// Store persists each key as <dir>/<key>.json. Writes go through a temp file
// and rename so a crash mid-write never leaves a truncated value behind.
type Store struct {
	dir string
}

// New creates the data directory if needed and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &Store{dir: dir}, nil
}

// Read returns the blob stored under key, or ok=false when the key is absent.
func (s *Store) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read %s", key)
	}
	return data, true, nil
}

// Write stores the blob under key atomically.
func (s *Store) Write(key string, data []byte) error {
	path := s.path(key)

	tmp, err := os.CreateTemp(s.dir, "."+s.fileName(key)+".*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", key)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", key)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename %s", key)
	}
	return nil
}

// Delete removes the key. Absent keys are a no-op.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, s.fileName(key))
}

// fileName maps a storage key to a safe file name. Keys are internal
// constants, so this only guards against accidental separators.
func (s *Store) fileName(key string) string {
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return key + ".json"
}
