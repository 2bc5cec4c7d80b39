package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// Disk keeps blobs as plain files under a media root. This is the default
// backend and what the /media/ handler streams from
type Disk struct {
	Root string
}

func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root, %w", err)
	}

	return &Disk{Root: root}, nil
}

func (d *Disk) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	dst := filepath.Join(d.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory, %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create object file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to write object file, %w", err)
	}

	return f.Close()
}

func (d *Disk) Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error) {
	if !ValidKey(key) {
		return nil, 0, "", ErrInvalidKey
	}

	f, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, "", ErrNotFound
		}
		return nil, 0, "", err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, "", err
	}

	// Content type wasn't persisted anywhere so derive it from the extension
	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}

	return f, stat.Size(), ct, nil
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}

	err := os.Remove(filepath.Join(d.Root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}
