package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FSStore is a filesystem-based BlobStore. Each container is a directory under the
// base path:
//
//	<base>/
//	  <container>/
//	    html_output.zip
type FSStore struct {
	basePath  string
	container string
	mu        sync.Mutex
}

// NewFSStore creates a store rooted at basePath.
func NewFSStore(basePath, container string) (*FSStore, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", basePath, err)
	}
	return &FSStore{basePath: abs, container: container}, nil
}

func (fs *FSStore) Container() string { return fs.container }

func (fs *FSStore) CreateContainer(_ context.Context) error {
	dir := filepath.Join(fs.basePath, fs.container)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// Upload writes to a temporary file and renames it into place.
func (fs *FSStore) Upload(ctx context.Context, name string, r io.ReadSeeker, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	target := fs.blobPath(name)
	if !opts.Overwrite {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%w: %s/%s", ErrBlobExists, fs.container, name)
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

// URL returns a file:// URL for name.
func (fs *FSStore) URL(name string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(fs.blobPath(name))}).String()
}

func (fs *FSStore) blobPath(name string) string {
	return filepath.Join(fs.basePath, fs.container, filepath.FromSlash(name))
}
