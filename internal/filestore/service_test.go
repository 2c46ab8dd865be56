package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/binstore/internal/domain"
	"github.com/nfrund/binstore/internal/logging"
	"github.com/nfrund/binstore/internal/pubsub"
	"github.com/nfrund/binstore/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published messages in memory.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	topics := make([]string, len(p.messages))
	for i, m := range p.messages {
		topics[i] = m.Topic
	}
	return topics
}

// conflictingBackend simulates a backend whose overwrite loses a race.
type conflictingBackend struct {
	storage.Backend
}

func (conflictingBackend) Overwrite(ctx context.Context, bucket, asset string, r io.Reader) (int64, error) {
	return 0, domain.AlreadyExists(bucket, asset)
}

func newTestService(t *testing.T) (Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return NewService(storage.NewMemoryStore(), pub), pub
}

func readAsset(t *testing.T, svc Service, bucket, asset string) string {
	t.Helper()
	rc, err := svc.GetAsset(context.Background(), bucket, asset)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestService_CreateBucketForce(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateBucket(ctx, "docs", false))

	err := svc.CreateBucket(ctx, "docs", false)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	assert.NoError(t, svc.CreateBucket(ctx, "docs", true))

	buckets, err := svc.GetBuckets(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs"}, buckets)

	// Only the real creation is announced.
	assert.Equal(t, []string{BucketCreated.Name()}, pub.topics())
}

func TestService_CreateBucketForceKeepsOtherErrors(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.CreateBucket(context.Background(), "..", true)
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestService_StoreAssetWithoutBucket(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.StoreAsset(ctx, "archive", "readme.txt", strings.NewReader("hello"), false, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	buckets, err := svc.GetBuckets(ctx)
	require.NoError(t, err)
	assert.Empty(t, buckets)
	assert.Empty(t, pub.topics())
}

func TestService_StoreAssetCreatesBucket(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	n, err := svc.StoreAsset(ctx, "docs", "readme.txt", strings.NewReader("hello"), true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", readAsset(t, svc, "docs", "readme.txt"))

	assets, err := svc.GetBucketList(ctx, "docs")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"readme.txt"}, assets)

	assert.Equal(t, []string{BucketCreated.Name(), AssetStored.Name()}, pub.topics())

	// Existing bucket with the create flag is not an error either.
	_, err = svc.StoreAsset(ctx, "docs", "other.txt", strings.NewReader("x"), true, false)
	require.NoError(t, err)
}

func TestService_StoreAssetNoClobberAndOverride(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.CreateBucket(ctx, "docs", false))

	_, err := svc.StoreAsset(ctx, "docs", "a.bin", strings.NewReader("data1"), false, false)
	require.NoError(t, err)

	_, err = svc.StoreAsset(ctx, "docs", "a.bin", strings.NewReader("data2"), false, false)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, "data1", readAsset(t, svc, "docs", "a.bin"))

	_, err = svc.StoreAsset(ctx, "docs", "a.bin", strings.NewReader("data2"), false, true)
	require.NoError(t, err)
	assert.Equal(t, "data2", readAsset(t, svc, "docs", "a.bin"))

	assert.Equal(t, []string{BucketCreated.Name(), AssetStored.Name(), AssetOverwritten.Name()}, pub.topics())

	var ev AssetEvent
	require.NoError(t, json.Unmarshal(pub.messages[2].Payload, &ev))
	assert.Equal(t, AssetEvent{Bucket: "docs", Asset: "a.bin", Size: 5}, ev)
}

func TestService_OverwriteConflictIsEscalated(t *testing.T) {
	backend := storage.NewMemoryStore()
	require.NoError(t, backend.CreateBucket(context.Background(), "docs"))
	svc := NewService(conflictingBackend{Backend: backend}, nil)

	_, err := svc.StoreAsset(context.Background(), "docs", "a.bin", strings.NewReader("x"), false, true)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, domain.ErrInternal, domain.Kind(err))
}

func TestService_GetAssetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetAsset(ctx, "docs", "readme.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetBucketList(ctx, "docs")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// syncBuffer is a bytes.Buffer safe for the audit goroutines to write to.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSubscribeAudit(t *testing.T) {
	bridge := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })

	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), logger))
	defer cancel()
	require.NoError(t, SubscribeAudit(ctx, bridge))

	svc := NewService(storage.NewMemoryStore(), bridge)
	_, err := svc.StoreAsset(ctx, "docs", "a.bin", strings.NewReader("x"), true, false)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		logs := out.String()
		return strings.Contains(logs, "event=storage.bucket.created") &&
			strings.Contains(logs, "event=storage.asset.stored") &&
			strings.Contains(logs, "asset=a.bin")
	}, 2*time.Second, 10*time.Millisecond)
}
