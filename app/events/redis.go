package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/lysyi3m/news-importer/app/cache"
)

const (
	ContentChannel        = cache.KeyPrefix + "content"
	ImportCompleteChannel = cache.KeyPrefix + "import-complete"
)

// RedisNotifier publishes events as JSON on Redis channels and drops cached
// content after every import
type RedisNotifier struct {
	client *redis.Client
	store  cache.Store
}

func NewRedisNotifier(client *redis.Client, store cache.Store) *RedisNotifier {
	return &RedisNotifier{client: client, store: store}
}

func (n *RedisNotifier) ContentImported(ctx context.Context, event ContentImported) {
	n.publish(ctx, ContentChannel, event)
}

func (n *RedisNotifier) ImportComplete(ctx context.Context, event ImportCompleted) {
	if n.store != nil {
		deleted, err := n.store.DeletePrefix(ctx, cache.ContentPrefix)
		if err != nil {
			slog.Warn("Failed to invalidate content cache", "error", err)
		} else {
			slog.Debug("Content cache invalidated", "keys", deleted)
		}
	}
	n.publish(ctx, ImportCompleteChannel, event)
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode event", "channel", channel, "error", err)
		return
	}

	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		slog.Warn("Failed to publish event", "channel", channel, "error", err)
	}
}
