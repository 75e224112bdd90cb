package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-importer/app/cache"
)

type recorder struct {
	imported  []ContentImported
	completed []ImportCompleted
}

func (r *recorder) ContentImported(_ context.Context, event ContentImported) {
	r.imported = append(r.imported, event)
}

func (r *recorder) ImportComplete(_ context.Context, event ImportCompleted) {
	r.completed = append(r.completed, event)
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	multi := Multi{a, LogNotifier{}, Nop{}, b}
	ctx := context.Background()

	multi.ContentImported(ctx, ContentImported{ArticleID: 7, Slug: "hello-world"})
	multi.ImportComplete(ctx, ImportCompleted{RunID: "run", Published: 1})

	for _, r := range []*recorder{a, b} {
		assert.Len(t, r.imported, 1)
		assert.Equal(t, int64(7), r.imported[0].ArticleID)
		assert.Len(t, r.completed, 1)
		assert.Equal(t, "run", r.completed[0].RunID)
	}
}

func TestRedisNotifierPublishesAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := cache.NewCache(ctx, mr.Addr(), "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, mr.Set(cache.ArticlesKey(20), "[]"))
	require.NoError(t, mr.Set(cache.FeedXMLKey(20), "<rss/>"))
	require.NoError(t, mr.Set(cache.CategoryTreeKey("en"), "{}"))

	sub := store.Client().Subscribe(ctx, ContentChannel, ImportCompleteChannel)
	defer sub.Close()
	for i := 0; i < 2; i++ {
		_, err := sub.Receive(ctx)
		require.NoError(t, err)
	}

	notifier := NewRedisNotifier(store.Client(), store)

	notifier.ContentImported(ctx, ContentImported{ArticleID: 7, Slug: "hello-world", FeedURL: "http://example.com/feed"})
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "news-importer:content", msg.Channel)

	var imported ContentImported
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &imported))
	assert.Equal(t, int64(7), imported.ArticleID)
	assert.Equal(t, "hello-world", imported.Slug)
	assert.True(t, mr.Exists(cache.ArticlesKey(20)), "content events leave the cache alone")

	notifier.ImportComplete(ctx, ImportCompleted{RunID: "run-1", Feeds: 2, Published: 1})
	msg, err = sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "news-importer:import-complete", msg.Channel)

	var completed ImportCompleted
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &completed))
	assert.Equal(t, "run-1", completed.RunID)
	assert.Equal(t, 1, completed.Published)

	assert.False(t, mr.Exists(cache.ArticlesKey(20)))
	assert.False(t, mr.Exists(cache.FeedXMLKey(20)))
	assert.True(t, mr.Exists(cache.CategoryTreeKey("en")))
}

func TestLogNotifierWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	ctx := context.Background()
	LogNotifier{}.ContentImported(ctx, ContentImported{ArticleID: 3, Slug: "first-post", FeedURL: "http://example.com/feed"})
	LogNotifier{}.ImportComplete(ctx, ImportCompleted{RunID: "run-2", Feeds: 1, Published: 1, Failed: 2})

	out := buf.String()
	assert.Contains(t, out, `msg="Content imported"`)
	assert.Contains(t, out, "article_id=3")
	assert.Contains(t, out, "slug=first-post")
	assert.Contains(t, out, `msg="Import complete"`)
	assert.Contains(t, out, "run_id=run-2")
	assert.Contains(t, out, "failed=2")
}
