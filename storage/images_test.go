package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewImageStore(dir)
	if err != nil {
		t.Fatalf("new image store: %v", err)
	}

	path, err := s.Save("pill.jpg", []byte("first"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	assert.Equal(t, filepath.Join(dir, "pill.jpg"), path)

	// Same filename overwrites; no uniqueness check is performed.
	path2, err := s.Save("pill.jpg", []byte("second"))
	assert.NoError(t, err)
	assert.Equal(t, path, path2)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	s, err := NewImageStore(dir)
	if err != nil {
		t.Fatalf("new image store: %v", err)
	}

	path, err := s.Save("../../etc/passwd.jpg", []byte("data"))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd.jpg"), path)
}

func TestSaveRejectsEmptyBasename(t *testing.T) {
	dir := t.TempDir()
	s, err := NewImageStore(dir)
	if err != nil {
		t.Fatalf("new image store: %v", err)
	}

	_, err = s.Save("..", []byte("data"))
	assert.ErrorIs(t, err, ErrBadFilename)
}

func TestNewImageStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "originals")
	s, err := NewImageStore(dir)
	assert.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
