package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskPhotoStore keeps photos under <root>/uploads/photos and serves them
// from <baseURL>/uploads/photos/<key>.
type DiskPhotoStore struct {
	dir     string
	baseURL string
}

func NewDiskPhotoStore(root, baseURL string) *DiskPhotoStore {
	return &DiskPhotoStore{dir: filepath.Join(root, filepath.FromSlash(photoPrefix)), baseURL: baseURL}
}

// Dir is the directory the HTTP layer serves uploads from.
func (s *DiskPhotoStore) Dir() string { return s.dir }

func (s *DiskPhotoStore) Save(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close photo: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish photo: %w", err)
	}
	return nil
}

func (s *DiskPhotoStore) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskPhotoStore) URL(key string) string {
	return joinURL(s.baseURL, photoPrefix, key)
}
