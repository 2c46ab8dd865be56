package filestore

import (
	"context"

	"github.com/nfrund/binstore/internal/logging"
	"github.com/nfrund/binstore/internal/pubsub"
)

// BucketEvent is the payload of BucketCreated.
type BucketEvent struct {
	Bucket string `json:"bucket"`
}

// AssetEvent is the payload of AssetStored and AssetOverwritten.
type AssetEvent struct {
	Bucket string `json:"bucket"`
	Asset  string `json:"asset"`
	Size   int64  `json:"size"`
}

// Storage events published by the service after a successful mutation.
var (
	BucketCreated    = pubsub.NewEvent[BucketEvent]("storage.bucket.created")
	AssetStored      = pubsub.NewEvent[AssetEvent]("storage.asset.stored")
	AssetOverwritten = pubsub.NewEvent[AssetEvent]("storage.asset.overwritten")
)

// publish sends an event if a publisher is configured. Delivery problems are
// logged and never fail the storage operation that triggered them.
func publish[T any](ctx context.Context, p pubsub.Publisher, event pubsub.Event[T], payload T) {
	if p == nil {
		return
	}
	if err := pubsub.Publish(ctx, p, event, payload); err != nil {
		logging.FromContext(ctx).Warn("failed to publish storage event", "topic", event.Name(), "error", err)
	}
}

// SubscribeAudit logs every storage event received on sub. It returns once
// the subscriptions are active.
func SubscribeAudit(ctx context.Context, sub pubsub.Subscriber) error {
	logger := logging.FromContext(ctx).With("component", "audit")

	if err := sub.Subscribe(ctx, BucketCreated.Name(), func(ctx context.Context, msg pubsub.Message) error {
		ev, err := pubsub.Decode(BucketCreated, msg)
		if err != nil {
			return err
		}
		logger.Info("audit", "event", BucketCreated.Name(), "bucket", ev.Bucket)
		return nil
	}); err != nil {
		return err
	}

	for _, event := range []pubsub.Event[AssetEvent]{AssetStored, AssetOverwritten} {
		event := event
		if err := sub.Subscribe(ctx, event.Name(), func(ctx context.Context, msg pubsub.Message) error {
			ev, err := pubsub.Decode(event, msg)
			if err != nil {
				return err
			}
			logger.Info("audit", "event", event.Name(), "bucket", ev.Bucket, "asset", ev.Asset, "size", ev.Size)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
