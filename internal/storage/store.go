// Package storage uploads the documentation archive to a blob store.
//
// A BlobStore is bound to one container (bucket). CreateContainer is idempotent and
// URL is a pure function of the store's endpoint, container and blob name, so
// repeated uploads of the same archive always report the same address.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobExists is returned by Upload when overwrite is false and the blob is present.
var ErrBlobExists = errors.New("blob already exists")

// UploadOptions controls a single upload.
type UploadOptions struct {
	Overwrite   bool
	ContentType string
}

// BlobStore is the contract the publish stage depends on.
type BlobStore interface {
	// CreateContainer creates the container; "already exists" is not an error.
	CreateContainer(ctx context.Context) error
	// Upload writes r under name.
	Upload(ctx context.Context, name string, r io.ReadSeeker, opts UploadOptions) error
	// URL returns the public address of name.
	URL(name string) string
	// Container returns the container (bucket) name.
	Container() string
}
