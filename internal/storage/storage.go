package storage

import (
	"context"
	"io"
	"path"
	"time"
)

// Package storage holds the S3-compatible object store used for product photos.
// Uploads are streamed; nothing touches local disk.

// PutObjectOptions define optional parameters for uploading objects.
// Size must be the exact byte count when known, or -1 to let the backend chunk.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store client. Implementations must be safe for concurrent use.
type Storage interface {
	// Put streams r to key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL for key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Ping reports whether the bucket is reachable.
	Ping(ctx context.Context) error
}

// PhotoKey builds the object key of a product photo: products/<product>/<photo><ext>.
func PhotoKey(productID, photoID, ext string) string {
	return path.Join("products", productID, photoID+ext)
}
