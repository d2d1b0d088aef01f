package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore stores objects as plain files under a root directory.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore returns a DiskStore rooted at root. baseURL is prepended
// when building client-facing URLs.
func NewDiskStore(root string, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &DiskStore{root: root, baseURL: baseURL}, nil
}

func (d *DiskStore) abs(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

func (d *DiskStore) Save(ctx context.Context, path string, r io.Reader) (string, error) {
	dst := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	// Write to a temp name first so a partially written object is never
	// visible at the final path.
	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize object: %w", err)
	}
	return path, nil
}

func (d *DiskStore) Open(ctx context.Context, path string) (io.ReadSeekCloser, int64, error) {
	f, err := os.Open(d.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (d *DiskStore) Delete(ctx context.Context, path string) error {
	err := os.Remove(d.abs(path))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (d *DiskStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(d.abs(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (d *DiskStore) Move(ctx context.Context, src, dst string) error {
	to := d.abs(dst)
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	err := os.Rename(d.abs(src), to)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (d *DiskStore) Copy(ctx context.Context, src, dst string) error {
	in, _, err := d.Open(ctx, src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = d.Save(ctx, dst, in)
	return err
}

func (d *DiskStore) URL(path string) string {
	return d.baseURL + "/" + path
}
