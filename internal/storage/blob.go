// Package storage is the local cache of generated papers and answer keys.
//
// Every table is one JSON blob under a fixed key. The blob backend is
// pluggable: Redis, a directory of files, or process memory.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrBlobNotFound is returned by BlobStore.Get for a key that was never set
// or has been deleted.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a minimal key-value store of opaque byte blobs.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A ttl of zero means no expiry; backends
	// without expiry support keep the value until it is deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
