package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalImageStore writes uploaded images to a directory on disk and serves
// them under a base URL, typically /uploads behind a static file handler or
// a fronting proxy.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, name string, contentType string, data io.Reader) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	return s.baseURL + "/" + filepath.Base(name), nil
}

// Dir exposes the backing directory so the server can mount a file handler.
func (s *LocalImageStore) Dir() string {
	return s.dir
}
