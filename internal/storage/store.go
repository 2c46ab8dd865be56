package storage

import (
	"context"
	"io"
)

// Backend defines the contract for a bucket/asset storage medium.
//
// Errors returned by a Backend match one of the kinds in the domain package:
// domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrInvalidIdentifier or
// domain.ErrInternal.
type Backend interface {
	// BucketExists reports whether bucket exists. It never fails.
	BucketExists(ctx context.Context, bucket string) bool

	// AssetExists reports whether bucket exists and contains asset.
	// A missing bucket yields false, not an error.
	AssetExists(ctx context.Context, bucket, asset string) bool

	// CreateBucket creates a new, empty bucket.
	CreateBucket(ctx context.Context, bucket string) error

	// ListBuckets returns every bucket, in no particular order.
	ListBuckets(ctx context.Context) ([]string, error)

	// ListAssets returns every asset in bucket, in no particular order.
	ListAssets(ctx context.Context, bucket string) ([]string, error)

	// Read opens an asset for sequential reading. The caller must close it.
	Read(ctx context.Context, bucket, asset string) (io.ReadCloser, error)

	// Store writes r as a new asset and returns the number of bytes written.
	// It never replaces an existing asset.
	Store(ctx context.Context, bucket, asset string, r io.Reader) (int64, error)

	// Overwrite writes r as the asset content, replacing any previous content.
	Overwrite(ctx context.Context, bucket, asset string, r io.Reader) (int64, error)
}
