package storage

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/logging"
	"github.com/spf13/afero"
)

// Sweep removes staging files older than ttl from every bucket. Staging files
// are only left behind when the process dies mid-write, so anything older
// than the longest plausible upload is garbage. It returns the number of
// files removed.
func (s *AferoStore) Sweep(ctx context.Context, ttl time.Duration) (int, error) {
	logger := logging.FromContext(ctx)

	buckets, err := s.ListBuckets(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-ttl)
	var removed int
	for _, bucket := range buckets {
		entries, err := afero.ReadDir(s.fs, s.bucketPath(bucket))
		if err != nil {
			logger.Warn("sweep: readdir failed", "bucket", bucket, "error", err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasPrefix(e.Name(), domain.StagingPrefix) {
				continue
			}
			if !e.ModTime().Before(cutoff) {
				continue
			}
			path := filepath.Join(s.bucketPath(bucket), e.Name())
			if err := s.fs.Remove(path); err != nil {
				logger.Warn("sweep: remove failed", "bucket", bucket, "file", e.Name(), "error", err)
				continue
			}
			removed++
			logger.Info("sweep: removed stale staging file", "bucket", bucket, "file", e.Name(),
				"age", time.Since(e.ModTime()).Round(time.Second))
		}
	}
	if removed > 0 {
		logger.Info("sweep: cycle complete", "removed", removed)
	}
	return removed, nil
}

// RunSweeper starts a goroutine that calls Sweep every interval until ctx is
// cancelled. A first pass runs immediately to clear leftovers from a previous
// crash. A zero interval runs only that first pass.
func (s *AferoStore) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		if _, err := s.Sweep(ctx, ttl); err != nil {
			logging.FromContext(ctx).Warn("sweep failed", "error", err)
		}
		if interval <= 0 {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Sweep(ctx, ttl); err != nil {
					logging.FromContext(ctx).Warn("sweep failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
