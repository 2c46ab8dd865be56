package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/logging"
	"github.com/spf13/afero"
)

// rootDir is the root namespace inside the afero filesystem. Buckets are its
// direct children and assets are direct children of a bucket.
var rootDir = string(filepath.Separator)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// AferoStore implements Backend on top of an afero filesystem.
//
// Writes are staged in a temporary file inside the bucket directory and
// renamed into place, so a failed copy never leaves a partial asset behind
// and readers observe either the old or the new content. Writers to the
// same (bucket, asset) are serialised by an in-process lock table.
type AferoStore struct {
	fs    afero.Fs
	locks keyLocks
}

// NewAferoStore creates an AferoStore over fsys, creating the root if needed.
func NewAferoStore(fsys afero.Fs) (*AferoStore, error) {
	if err := fsys.MkdirAll(rootDir, dirPerm); err != nil {
		return nil, domain.Internal("", "", "create storage root", err)
	}
	return &AferoStore{fs: fsys}, nil
}

// NewFilesystemStore creates an AferoStore rooted at the directory root on
// the local disk. The directory is created recursively if it is missing.
func NewFilesystemStore(root string) (*AferoStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.Internal("", "", fmt.Sprintf("resolve storage root %q", root), err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		if err := os.MkdirAll(absRoot, dirPerm); err != nil {
			return nil, domain.Internal("", "", fmt.Sprintf("create storage root %q", absRoot), err)
		}
		logging.FromContext(context.Background()).Info("storage root directory was created", "root", absRoot)
	}
	return NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), absRoot))
}

// NewMemoryStore creates an AferoStore that keeps everything in memory.
func NewMemoryStore() *AferoStore {
	s, err := NewAferoStore(afero.NewMemMapFs())
	if err != nil {
		// MkdirAll on an empty MemMapFs cannot fail.
		panic(err)
	}
	return s
}

func (s *AferoStore) bucketPath(bucket string) string {
	return filepath.Join(rootDir, bucket)
}

func (s *AferoStore) assetPath(bucket, asset string) string {
	return filepath.Join(rootDir, bucket, asset)
}

// BucketExists reports whether bucket is a directory under the root.
func (s *AferoStore) BucketExists(ctx context.Context, bucket string) bool {
	if domain.ValidateBucketID(bucket) != nil {
		return false
	}
	ok, err := afero.DirExists(s.fs, s.bucketPath(bucket))
	return ok && err == nil
}

// AssetExists reports whether asset is a regular file inside bucket.
func (s *AferoStore) AssetExists(ctx context.Context, bucket, asset string) bool {
	if domain.ValidateAssetID(bucket, asset) != nil || !s.BucketExists(ctx, bucket) {
		return false
	}
	info, err := s.fs.Stat(s.assetPath(bucket, asset))
	return err == nil && info.Mode().IsRegular()
}

// CreateBucket creates bucket as a new directory under the root.
func (s *AferoStore) CreateBucket(ctx context.Context, bucket string) error {
	if err := domain.ValidateBucketID(bucket); err != nil {
		return err
	}
	if s.BucketExists(ctx, bucket) {
		return domain.AlreadyExists(bucket, "")
	}
	if err := s.fs.Mkdir(s.bucketPath(bucket), dirPerm); err != nil {
		// Lost a race against another creator.
		if errors.Is(err, fs.ErrExist) && s.BucketExists(ctx, bucket) {
			return domain.AlreadyExists(bucket, "")
		}
		return domain.Internal(bucket, "", "create bucket", err)
	}
	logging.FromContext(ctx).Info("bucket created", "bucket", bucket)
	return nil
}

// ListBuckets returns the names of all bucket directories.
func (s *AferoStore) ListBuckets(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, rootDir)
	if err != nil {
		return nil, domain.Internal("", "", "list buckets", err)
	}
	buckets := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			buckets = append(buckets, e.Name())
		}
	}
	return buckets, nil
}

// ListAssets returns the names of all regular files in bucket.
func (s *AferoStore) ListAssets(ctx context.Context, bucket string) ([]string, error) {
	if err := domain.ValidateBucketID(bucket); err != nil {
		return nil, err
	}
	if !s.BucketExists(ctx, bucket) {
		return nil, domain.NotFound(bucket, "")
	}
	entries, err := afero.ReadDir(s.fs, s.bucketPath(bucket))
	if err != nil {
		return nil, domain.Internal(bucket, "", "list assets", err)
	}
	assets := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() && !strings.HasPrefix(e.Name(), domain.StagingPrefix) {
			assets = append(assets, e.Name())
		}
	}
	return assets, nil
}

// Read opens an asset for reading. The caller must close the returned reader.
func (s *AferoStore) Read(ctx context.Context, bucket, asset string) (io.ReadCloser, error) {
	if err := domain.ValidateAssetID(bucket, asset); err != nil {
		return nil, err
	}
	if !s.AssetExists(ctx, bucket, asset) {
		return nil, domain.NotFound(bucket, asset)
	}
	f, err := s.fs.Open(s.assetPath(bucket, asset))
	if err != nil {
		return nil, domain.Internal(bucket, asset, "open asset", err)
	}
	return f, nil
}

// Store writes r as a new asset. It fails with domain.ErrAlreadyExists if the
// asset is present before the first byte is written.
func (s *AferoStore) Store(ctx context.Context, bucket, asset string, r io.Reader) (int64, error) {
	if err := domain.ValidateAssetID(bucket, asset); err != nil {
		return 0, err
	}
	if !s.BucketExists(ctx, bucket) {
		return 0, domain.NotFound(bucket, "")
	}

	unlock := s.locks.lock(bucket, asset)
	defer unlock()

	if err := s.checkTarget(bucket, asset, true); err != nil {
		return 0, err
	}

	tmp, n, err := s.stage(bucket, asset, r)
	if err != nil {
		return 0, err
	}
	// Another process may have created the asset while we were copying.
	// This narrows the window; a create between here and the rename is
	// still overwritten.
	if err := s.checkTarget(bucket, asset, true); err != nil {
		s.discard(ctx, tmp)
		return 0, err
	}
	if err := s.commit(ctx, tmp, bucket, asset); err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("asset stored", "bucket", bucket, "asset", asset, "size", n)
	return n, nil
}

// Overwrite writes r as the asset content, creating the asset or replacing
// its previous content. If the replacement cannot be committed the previous
// content stays in place.
func (s *AferoStore) Overwrite(ctx context.Context, bucket, asset string, r io.Reader) (int64, error) {
	if err := domain.ValidateAssetID(bucket, asset); err != nil {
		return 0, err
	}
	if !s.BucketExists(ctx, bucket) {
		return 0, domain.NotFound(bucket, "")
	}

	unlock := s.locks.lock(bucket, asset)
	defer unlock()

	if err := s.checkTarget(bucket, asset, false); err != nil {
		return 0, err
	}
	existed := s.AssetExists(ctx, bucket, asset)

	tmp, n, err := s.stage(bucket, asset, r)
	if err != nil {
		return 0, err
	}
	if err := s.commit(ctx, tmp, bucket, asset); err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("asset overwritten", "bucket", bucket, "asset", asset, "size", n, "replaced", existed)
	return n, nil
}

// checkTarget inspects the final asset path before a write. Anything other
// than a regular file at that path is an internal error, since committing
// over it would destroy a directory or special file. When noClobber is set
// an existing regular file is reported as domain.ErrAlreadyExists.
func (s *AferoStore) checkTarget(bucket, asset string, noClobber bool) error {
	info, err := s.fs.Stat(s.assetPath(bucket, asset))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return domain.Internal(bucket, asset, "stat asset", err)
	case !info.Mode().IsRegular():
		return domain.Internal(bucket, asset, "asset path is not a regular file", nil)
	case noClobber:
		return domain.AlreadyExists(bucket, asset)
	default:
		return nil
	}
}

// stage copies r into a fresh staging file inside the bucket directory and
// returns its path. On failure the staging file is removed.
func (s *AferoStore) stage(bucket, asset string, r io.Reader) (string, int64, error) {
	tmp := filepath.Join(s.bucketPath(bucket), domain.StagingPrefix+uuid.NewString()+".tmp")
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return "", 0, domain.Internal(bucket, asset, "create staging file", err)
	}

	n, werr := io.Copy(f, r)
	serr := f.Sync()
	cerr := f.Close()

	switch {
	case werr != nil:
		_ = s.fs.Remove(tmp)
		return "", 0, domain.Internal(bucket, asset, "stream write", werr)
	case serr != nil:
		_ = s.fs.Remove(tmp)
		return "", 0, domain.Internal(bucket, asset, "sync", serr)
	case cerr != nil:
		_ = s.fs.Remove(tmp)
		return "", 0, domain.Internal(bucket, asset, "flush", cerr)
	}
	return tmp, n, nil
}

// commit renames a staging file onto the asset path.
func (s *AferoStore) commit(ctx context.Context, tmp, bucket, asset string) error {
	if err := s.fs.Rename(tmp, s.assetPath(bucket, asset)); err != nil {
		s.discard(ctx, tmp)
		logging.FromContext(ctx).Error("failed to commit asset", "bucket", bucket, "asset", asset, "error", err)
		return domain.Internal(bucket, asset, "commit asset", err)
	}
	return nil
}

func (s *AferoStore) discard(ctx context.Context, tmp string) {
	if err := s.fs.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.FromContext(ctx).Warn("failed to remove staging file", "path", tmp, "error", err)
	}
}
