// Package storage keeps uploaded files on a filesystem rooted at the upload
// directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"bukukas/internal/uuid"
)

// FileStore persists uploaded files and returns a path relative to its root.
type FileStore interface {
	Save(dir, ext string, r io.Reader) (string, error)
	Delete(relPath string) error
}

// LocalStore writes files into an afero filesystem.
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore creates a LocalStore confined to the root directory on disk.
func NewLocalStore(root string) *LocalStore {
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewStore creates a LocalStore on fs. Paths are treated as rooted at fs's root.
func NewStore(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

// Save writes r to dir under a generated name with extension ext and
// returns the slash-separated relative path, e.g. "profile-pictures/<id>.png".
func (s *LocalStore) Save(dir, ext string, r io.Reader) (string, error) {
	name, err := clean(path.Join(dir, uuid.New()+"."+strings.TrimPrefix(ext, ".")))
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	f, err := s.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing upload: %w", err)
	}
	return strings.TrimPrefix(name, "/"), nil
}

// Delete removes relPath. A file that is already gone is not an error.
func (s *LocalStore) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	name, err := clean(relPath)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting upload: %w", err)
	}
	return nil
}

// clean roots rel at "/" so ".." segments cannot climb above the store.
func clean(rel string) (string, error) {
	name := path.Clean("/" + rel)
	if name == "/" {
		return "", fmt.Errorf("invalid upload path %q", rel)
	}
	return name, nil
}
