// Package watch reports bucket and asset changes made under a filesystem
// storage root, including changes made by other processes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/logging"
)

// Op is the kind of change observed.
type Op string

const (
	BucketCreated Op = "bucket.created"
	BucketRemoved Op = "bucket.removed"
	AssetWritten  Op = "asset.written"
	AssetRemoved  Op = "asset.removed"
)

// Event describes one observed change. Asset is empty for bucket events.
type Event struct {
	Op     Op
	Bucket string
	Asset  string
}

func (e Event) String() string {
	if e.Asset == "" {
		return fmt.Sprintf("%s %s", e.Op, e.Bucket)
	}
	return fmt.Sprintf("%s %s/%s", e.Op, e.Bucket, e.Asset)
}

// Watcher follows the root directory and every bucket directory in it.
type Watcher struct {
	root    string
	fw      *fsnotify.Watcher
	buckets map[string]struct{}
}

// New creates a Watcher for the storage root. Buckets present at this point
// are watched immediately; buckets created later are picked up as they appear.
func New(root string) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot get absolute path to %q: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %q; can only watch directories", absRoot)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher: %w", err)
	}
	w := &Watcher{root: absRoot, fw: fw, buckets: make(map[string]struct{})}

	if err := fw.Add(absRoot); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("cannot add %q to watcher: %w", absRoot, err)
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("read storage root: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.addBucket(e.Name()); err != nil {
				_ = fw.Close()
				return nil, err
			}
		}
	}
	return w, nil
}

func (w *Watcher) addBucket(bucket string) error {
	if err := w.fw.Add(filepath.Join(w.root, bucket)); err != nil {
		return fmt.Errorf("cannot watch bucket %q: %w", bucket, err)
	}
	w.buckets[bucket] = struct{}{}
	return nil
}

// Run delivers events to handle until ctx is cancelled or the watcher is
// closed. Watcher errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, handle func(Event)) error {
	logger := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			for _, out := range w.translate(ev) {
				handle(out)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// translate maps a raw fsnotify event to storage events. Staging files and
// anything nested deeper than bucket/asset are ignored.
func (w *Watcher) translate(ev fsnotify.Event) []Event {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	parts := strings.Split(rel, string(filepath.Separator))

	switch len(parts) {
	case 1:
		return w.translateBucket(ev, parts[0])
	case 2:
		if _, known := w.buckets[parts[0]]; !known {
			return nil
		}
		return translateAsset(ev, parts[0], parts[1])
	default:
		return nil
	}
}

func (w *Watcher) translateBucket(ev fsnotify.Event, bucket string) []Event {
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.IsDir() {
			return nil
		}
		if err := w.addBucket(bucket); err != nil {
			return nil
		}
		return []Event{{Op: BucketCreated, Bucket: bucket}}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if _, known := w.buckets[bucket]; !known {
			return nil
		}
		delete(w.buckets, bucket)
		return []Event{{Op: BucketRemoved, Bucket: bucket}}
	}
	return nil
}

func translateAsset(ev fsnotify.Event, bucket, asset string) []Event {
	if strings.HasPrefix(asset, domain.StagingPrefix) {
		return nil
	}
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return []Event{{Op: AssetWritten, Bucket: bucket, Asset: asset}}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return []Event{{Op: AssetRemoved, Bucket: bucket, Asset: asset}}
	}
	return nil
}
