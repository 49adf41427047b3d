// Package storage persists uploaded original images on local disk.
package storage

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrBadFilename rejects names that would escape the image directory.
var ErrBadFilename = errors.New("invalid image filename")

// ImageStore writes uploaded images under a single directory. Paths are
// derived from the client filename; an existing file with the same name is
// overwritten, matching the documented collision policy.
type ImageStore struct {
	dir string
}

// NewImageStore creates the directory if needed and returns a store over it.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir}, nil
}

// Dir returns the directory the store writes into, for static mounting.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes the image bytes and returns the stored path. Only the base
// name of the client-supplied filename is used.
func (s *ImageStore) Save(filename string, data []byte) (string, error) {
	base := filepath.Base(filename)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", ErrBadFilename
	}
	path := filepath.Join(s.dir, base)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
