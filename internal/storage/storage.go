// Package storage holds the blob storage backends. Records in the
// database only ever reference objects by key, everything binary lives
// behind the Store interface
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"vidshare/media-api/config"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Store is a durable blob store. Keys are slash separated relative paths,
// the same paths that show up under the /media/ URL prefix
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, int64, string, error)
	Delete(ctx context.Context, key string) error
}

// New picks a backend based on the configured storage type
func New(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Type {
	case "disk":
		return NewDisk(cfg.Storage.MediaRoot)
	case "s3":
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// VideoKey builds the owner partitioned key for a video object
func VideoKey(userID, name string) string {
	return path.Join("videos", userID, name)
}

// ThumbKey builds the owner partitioned key for a thumbnail object
func ThumbKey(userID, name string) string {
	return path.Join("thumbnails", userID, name)
}

// ValidKey rejects anything that could escape the store root when mapped
// onto a filesystem
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}

	clean := path.Clean(key)
	if clean != key {
		return false
	}

	for _, part := range strings.Split(clean, "/") {
		if part == ".." || part == "." || part == "" {
			return false
		}
	}

	return true
}
