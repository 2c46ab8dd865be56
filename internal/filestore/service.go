package filestore

import (
	"context"
	"errors"
	"io"

	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/logging"
	"github.com/nfrund/binstore/internal/pubsub"
	"github.com/nfrund/binstore/internal/storage"
)

// Service defines the caller-facing bucket and asset operations.
type Service interface {
	// GetAsset opens an asset for reading. The caller must close the reader.
	GetAsset(ctx context.Context, bucket, asset string) (io.ReadCloser, error)
	// StoreAsset writes content as an asset, optionally creating the bucket
	// first and optionally replacing an existing asset.
	StoreAsset(ctx context.Context, bucket, asset string, content io.Reader, createBucketIfNotExists, override bool) (int64, error)
	// CreateBucket creates a bucket. With force, an existing bucket is not an error.
	CreateBucket(ctx context.Context, bucket string, force bool) error
	// GetBuckets lists every bucket.
	GetBuckets(ctx context.Context) ([]string, error)
	// GetBucketList lists every asset in a bucket.
	GetBucketList(ctx context.Context, bucket string) ([]string, error)
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	backend   storage.Backend
	publisher pubsub.Publisher
}

// NewService creates a new file service over backend. Storage events are
// published on publisher; a nil publisher disables them.
func NewService(backend storage.Backend, publisher pubsub.Publisher) Service {
	return &serviceImpl{
		backend:   backend,
		publisher: publisher,
	}
}

// GetAsset delegates to the backend.
func (s *serviceImpl) GetAsset(ctx context.Context, bucket, asset string) (io.ReadCloser, error) {
	return s.backend.Read(ctx, bucket, asset)
}

// StoreAsset orchestrates the optional bucket creation and the write.
func (s *serviceImpl) StoreAsset(ctx context.Context, bucket, asset string, content io.Reader, createBucketIfNotExists, override bool) (int64, error) {
	// 1. Create the target bucket on demand. A concurrent creator winning the
	// race is fine, hence force.
	if createBucketIfNotExists && !s.backend.BucketExists(ctx, bucket) {
		if err := s.CreateBucket(ctx, bucket, true); err != nil {
			return 0, err
		}
	}

	// 2. Dispatch to the no-clobber or the replace path.
	if !override {
		n, err := s.backend.Store(ctx, bucket, asset, content)
		if err != nil {
			return 0, err
		}
		publish(ctx, s.publisher, AssetStored, AssetEvent{Bucket: bucket, Asset: asset, Size: n})
		return n, nil
	}

	n, err := s.backend.Overwrite(ctx, bucket, asset, content)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Overwrite never conflicts unless another writer interfered.
			logging.FromContext(ctx).Error("overwrite reported a conflict", "bucket", bucket, "asset", asset, "error", err)
			return 0, domain.Internal(bucket, asset, "overwrite conflicted with a concurrent writer: "+err.Error(), nil)
		}
		return 0, err
	}
	publish(ctx, s.publisher, AssetOverwritten, AssetEvent{Bucket: bucket, Asset: asset, Size: n})
	return n, nil
}

// CreateBucket creates bucket, treating pre-existence as success when force is set.
func (s *serviceImpl) CreateBucket(ctx context.Context, bucket string, force bool) error {
	err := s.backend.CreateBucket(ctx, bucket)
	if err != nil {
		if force && errors.Is(err, domain.ErrAlreadyExists) {
			logging.FromContext(ctx).Info("existing bucket accepted", "bucket", bucket, "force", force)
			return nil
		}
		return err
	}
	publish(ctx, s.publisher, BucketCreated, BucketEvent{Bucket: bucket})
	return nil
}

// GetBuckets delegates to the backend.
func (s *serviceImpl) GetBuckets(ctx context.Context) ([]string, error) {
	return s.backend.ListBuckets(ctx)
}

// GetBucketList delegates to the backend.
func (s *serviceImpl) GetBucketList(ctx context.Context, bucket string) ([]string, error) {
	return s.backend.ListAssets(ctx, bucket)
}
