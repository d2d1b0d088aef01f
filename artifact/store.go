// Package artifact provides the byte store the pipeline writes originals,
// renditions and thumbnails to. The pipeline is written against the Store
// interface so the backing medium (local disk, object storage) is swappable.
package artifact

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("artifact: object not found")

// Store is a path-addressable byte store.
type Store interface {
	// Save writes the reader's bytes at path and returns the stored path.
	Save(ctx context.Context, path string, r io.Reader) (string, error)
	// Open returns a seekable reader over the object and its size.
	Open(ctx context.Context, path string) (io.ReadSeekCloser, int64, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	Move(ctx context.Context, src, dst string) error
	Copy(ctx context.Context, src, dst string) error
	// URL returns a client-facing URL for the object.
	URL(path string) string
}
