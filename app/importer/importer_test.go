package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/database/dbtest"
	"github.com/lysyi3m/news-importer/app/events"
	"github.com/lysyi3m/news-importer/app/source"
)

type recorder struct {
	imported  []events.ContentImported
	completed []events.ImportCompleted
}

func (r *recorder) ContentImported(_ context.Context, event events.ContentImported) {
	r.imported = append(r.imported, event)
}

func (r *recorder) ImportComplete(_ context.Context, event events.ImportCompleted) {
	r.completed = append(r.completed, event)
}

type fakeMedia struct {
	calls []string
	id    int64
	err   error
}

func (m *fakeMedia) Import(_ context.Context, remoteURL string) (int64, error) {
	m.calls = append(m.calls, remoteURL)
	return m.id, m.err
}

type failingTags struct {
	database.TagRepository
}

func (failingTags) CreateTag(context.Context, *database.Tag) error {
	return &database.PersistenceError{Op: "create tag", Err: errors.New("disk full")}
}

type failingMeta struct {
	database.MetaRepository
}

func (failingMeta) UpsertMeta(context.Context, int64, string, string, string) error {
	return &database.PersistenceError{Op: "upsert meta", Err: errors.New("disk full")}
}

type failingLinks struct {
	database.ArticleRepository
}

func (failingLinks) SetArticleCategories(context.Context, int64, []int64) error {
	return &database.PersistenceError{Op: "set article categories", Err: errors.New("disk full")}
}

func (failingLinks) SetArticleTags(context.Context, int64, []int64) error {
	return &database.PersistenceError{Op: "set article tags", Err: errors.New("disk full")}
}

type testEnv struct {
	db         *database.DB
	feeds      *database.FeedRepo
	categories *database.CategoryRepo
	articles   *database.ArticleRepo
	tags       *database.TagRepo
	meta       *database.MetaRepo
	options    *database.OptionRepo
	notifier   *recorder
	media      *fakeMedia
	importer   *Importer
	category   *database.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.New(t)

	env := &testEnv{
		db:         db,
		feeds:      database.NewFeedRepository(db),
		categories: database.NewCategoryRepository(db),
		articles:   database.NewArticleRepository(db),
		tags:       database.NewTagRepository(db),
		meta:       database.NewMetaRepository(db),
		options:    database.NewOptionRepository(db),
		notifier:   &recorder{},
		media:      &fakeMedia{id: 42},
	}

	env.category = &database.Category{Name: "News", Slug: "news", Language: "en"}
	require.NoError(t, env.categories.CreateCategory(context.Background(), env.category))

	env.importer = New(Dependencies{
		Feeds:     env.feeds,
		Articles:  env.articles,
		Tags:      env.tags,
		Meta:      env.meta,
		Media:     env.media,
		Notifier:  env.notifier,
		UserAgent: "test-agent",
		Language:  "en",
	})

	return env
}

func (e *testEnv) register(t *testing.T, url string) *database.Feed {
	t.Helper()
	canonical := source.NormalizeURL(url)
	feed := &database.Feed{URL: canonical, Hash: source.Fingerprint(canonical), CategoryID: &e.category.ID}
	require.NoError(t, e.feeds.CreateFeed(context.Background(), feed))
	return feed
}

func (e *testEnv) metaValues(t *testing.T, articleID int64) map[string]string {
	t.Helper()
	values, err := e.meta.ListMeta(context.Background(), articleID)
	require.NoError(t, err)
	out := map[string]string{}
	for _, m := range values {
		out[m.Name] = m.Value
	}
	return out
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func rss(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Test feed</title>
    <link>http://example.com</link>
    <description>Test</description>
    ` + items + `
  </channel>
</rss>`
}

func TestRunImportsHelloWorld(t *testing.T) {
	env := newTestEnv(t)
	server := serveFeed(t, rss(`<item>
      <title>Hello World</title>
      <link>http://example.com/hello</link>
      <description>Hi</description>
    </item>`))
	feedURL := server.URL + "/feed.xml"
	env.register(t, feedURL)

	summary, err := env.importer.Run(context.Background(), []string{feedURL})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Feeds)
	assert.Equal(t, 1, summary.Entries)
	assert.Equal(t, 1, summary.Published)
	assert.NotEmpty(t, summary.RunID)

	article, err := env.articles.GetArticleBySlug(context.Background(), "hello-world")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "Hello World", article.Title)
	assert.Equal(t, "Hi", article.Content)
	assert.Equal(t, "Hi", article.Excerpt)
	assert.Equal(t, database.StatusPublish, article.Status)
	assert.Equal(t, "en", article.Language)

	categories, err := env.articles.GetArticleCategoryIDs(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{env.category.ID}, categories)

	tags, err := env.articles.GetArticleTagIDs(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)

	meta := env.metaValues(t, article.ID)
	assert.Equal(t, map[string]string{database.MetaLinkBack: "http://example.com/hello"}, meta)
	assert.Empty(t, env.media.calls)

	require.Len(t, env.notifier.imported, 1)
	assert.Equal(t, "hello-world", env.notifier.imported[0].Slug)
}

func TestRunSkipsDuplicateSlugWithinFeed(t *testing.T) {
	env := newTestEnv(t)
	server := serveFeed(t, rss(`
    <item><title>Breaking News!</title><description>first</description></item>
    <item><title>breaking   news</title><description>second</description></item>`))
	env.register(t, server.URL)

	summary, err := env.importer.Run(context.Background(), []string{server.URL})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	article, err := env.articles.GetArticleBySlug(context.Background(), "breaking-news")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "first", article.Content)
}

// An unrelated article that happens to share the slug also blocks the entry;
// a re-published story from another source with the same title is dropped.
func TestSlugCollisionWithUnrelatedArticleSkipsEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	manual := &database.Article{Title: "Hello World", Slug: "hello-world", Language: "en", Status: database.StatusPublish}
	require.NoError(t, env.articles.CreateArticle(ctx, manual))

	server := serveFeed(t, rss(`<item><title>Hello, World</title><description>from feed</description></item>`))
	env.register(t, server.URL)

	summary, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Published)
	assert.Equal(t, 1, summary.Skipped)

	article, err := env.articles.GetArticleBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, manual.ID, article.ID)
	assert.Empty(t, article.Content)
}

func TestRunAttachesTagsMediaAndVideo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := serveFeed(t, rss(`<item>
      <title>Tagged &lt;b&gt;story&lt;/b&gt;</title>
      <link>http://example.com/tagged</link>
      <description><![CDATA[<p>Body with <a href="http://spam.example.com">a link</a></p>]]></description>
      <media:thumbnail url="http://img.example.com/pic.jpg?size=large"/>
      <media:keywords>Go, go , News,&lt;b&gt;News&lt;/b&gt;, ,</media:keywords>
      <enclosure url="http://video.example.com/clip.mp4" type="video/mp4" length="1"/>
    </item>`))
	env.register(t, server.URL)

	summary, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Published)

	article, err := env.articles.GetArticleBySlug(ctx, "tagged-story")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "Tagged story", article.Title)
	assert.NotContains(t, article.Content, "href")
	assert.Contains(t, article.Content, "a link")

	tagIDs, err := env.articles.GetArticleTagIDs(ctx, article.ID)
	require.NoError(t, err)
	assert.Len(t, tagIDs, 2)

	goTag, err := env.tags.GetTagBySlug(ctx, "go", "en", database.PostTypePost)
	require.NoError(t, err)
	require.NotNil(t, goTag)
	assert.Equal(t, "Go", goTag.Name)

	assert.Equal(t, []string{"http://img.example.com/pic.jpg?size=large"}, env.media.calls)

	meta := env.metaValues(t, article.ID)
	assert.Equal(t, "42", meta[database.MetaPostImage])
	assert.Equal(t, "http://example.com/tagged", meta[database.MetaLinkBack])
	assert.Equal(t, "http://video.example.com/clip.mp4", meta[database.MetaVideoURL])
}

func TestRunPrefersImageOverThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := serveFeed(t, rss(`<item>
      <title>Both images</title>
      <image>http://img.example.com/direct.jpg</image>
      <media:thumbnail url="http://img.example.com/thumb.jpg"/>
    </item>`))
	env.register(t, server.URL)

	summary, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Published)

	assert.Equal(t, []string{"http://img.example.com/direct.jpg"}, env.media.calls)
}

func TestRunFallsBackToThumbnailForNestedImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	server := serveFeed(t, rss(`<item>
      <title>Nested image</title>
      <image><title>caption</title></image>
      <media:thumbnail url="http://img.example.com/thumb.jpg"/>
    </item>`))
	env.register(t, server.URL)

	_, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)

	assert.Equal(t, []string{"http://img.example.com/thumb.jpg"}, env.media.calls)
}

func TestEnrichmentFailuresStillPublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.importer = New(Dependencies{
		Feeds:     env.feeds,
		Articles:  failingLinks{env.articles},
		Tags:      failingTags{env.tags},
		Meta:      failingMeta{env.meta},
		Media:     env.media,
		Notifier:  env.notifier,
		UserAgent: "test-agent",
		Language:  "en",
	})

	server := serveFeed(t, rss(`<item>
      <title>Unlucky</title>
      <link>http://example.com/unlucky</link>
      <media:thumbnail url="http://img.example.com/pic.jpg"/>
      <media:keywords>go, news</media:keywords>
    </item>`))
	env.register(t, server.URL)

	summary, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)
	assert.Equal(t, 0, summary.Failed)

	article, err := env.articles.GetArticleBySlug(ctx, "unlucky")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, database.StatusPublish, article.Status)

	assert.Empty(t, env.metaValues(t, article.ID))
	tagIDs, err := env.articles.GetArticleTagIDs(ctx, article.ID)
	require.NoError(t, err)
	assert.Empty(t, tagIDs)
	require.Len(t, env.notifier.imported, 1)
}

func TestRunReusesExistingTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	existing := &database.Tag{Name: "Politics", Slug: "politics", Language: "en", PostType: database.PostTypePost}
	require.NoError(t, env.tags.CreateTag(ctx, existing))

	server := serveFeed(t, rss(`<item><title>Election</title><media:keywords>politics</media:keywords></item>`))
	env.register(t, server.URL)

	_, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)

	article, err := env.articles.GetArticleBySlug(ctx, "election")
	require.NoError(t, err)
	require.NotNil(t, article)

	tagIDs, err := env.articles.GetArticleTagIDs(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{existing.ID}, tagIDs)
}

func TestMediaFailureStillPublishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.media.err = errors.New("boom")

	server := serveFeed(t, rss(`<item>
      <title>Picture</title>
      <enclosure url="http://img.example.com/pic.png" type="image/png" length="1"/>
    </item>`))
	env.register(t, server.URL)

	summary, err := env.importer.Run(ctx, []string{server.URL})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)

	article, err := env.articles.GetArticleBySlug(ctx, "picture")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, database.StatusPublish, article.Status)

	meta := env.metaValues(t, article.ID)
	_, hasImage := meta[database.MetaPostImage]
	assert.False(t, hasImage)
	_, hasVideo := meta[database.MetaVideoURL]
	assert.False(t, hasVideo, "image enclosures are not videos")
	assert.Equal(t, []string{"http://img.example.com/pic.png"}, env.media.calls)
}

func TestRunIsolatesFeedFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer broken.Close()
	env.register(t, broken.URL)

	notAFeed := serveFeed(t, `<?xml version="1.0"?><foo/>`)
	env.register(t, notAFeed.URL)

	uncategorized := serveFeed(t, rss(`<item><title>Orphan</title></item>`))
	require.NoError(t, env.feeds.CreateFeed(ctx, &database.Feed{
		URL:  source.NormalizeURL(uncategorized.URL),
		Hash: source.Fingerprint(uncategorized.URL),
	}))

	good := serveFeed(t, rss(`
    <item><description>no title</description></item>
    <item><title>Survivor</title></item>`))
	env.register(t, good.URL)

	summary, err := env.importer.Run(ctx, []string{
		broken.URL,
		"http://unregistered.example.com/rss",
		notAFeed.URL,
		uncategorized.URL,
		good.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.FeedsSkipped)
	assert.Equal(t, 1, summary.Feeds)
	assert.Equal(t, 2, summary.Entries)
	assert.Equal(t, 1, summary.Published)
	assert.Equal(t, 1, summary.Skipped)

	orphan, err := env.articles.GetArticleBySlug(ctx, "orphan")
	require.NoError(t, err)
	assert.Nil(t, orphan)
}

func TestRunWithoutSources(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importer.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestLockRefusesUnexpiredRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	lock := NewLock(env.options, time.Hour)
	lock.now = func() time.Time { return now }

	require.NoError(t, env.options.SetOption(ctx, LockOption, formatUnix(now.Add(30*time.Minute))))
	assert.ErrorIs(t, lock.Acquire(ctx), ErrLockActive)

	require.NoError(t, env.options.SetOption(ctx, LockOption, formatUnix(now.Add(-time.Second))))
	require.NoError(t, lock.Acquire(ctx))

	expiry, err := lock.Expiry(ctx)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), expiry.Unix())

	active, err := lock.Active(ctx)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestLockAllowsNextTickWithinGrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	lock := NewLock(env.options, time.Hour)
	lock.now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	require.NoError(t, lock.Acquire(ctx))

	// the next tick lands an hour after start, slightly before the recorded expiry
	lock.now = func() time.Time { return start.Add(time.Hour) }
	active, err := lock.Active(ctx)
	require.NoError(t, err)
	assert.False(t, active)
	require.NoError(t, lock.Acquire(ctx))

	lock.now = func() time.Time { return start.Add(2*time.Hour - 2*LockGrace) }
	assert.ErrorIs(t, lock.Acquire(ctx), ErrLockActive)
}

func TestLockWithoutOption(t *testing.T) {
	env := newTestEnv(t)
	lock := NewLock(env.options, time.Hour)

	active, err := lock.Active(context.Background())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestServiceImportAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registry := source.NewRegistry(env.feeds, env.categories)
	lock := NewLock(env.options, time.Hour)
	service := NewService(env.importer, registry, lock, env.notifier)

	server := serveFeed(t, rss(`<item><title>Scheduled</title><description>x</description></item>`))
	_, err := registry.Register(ctx, server.URL, env.category.ID, nil)
	require.NoError(t, err)

	summary, err := service.ImportAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)
	require.Len(t, env.notifier.completed, 1)
	assert.Equal(t, summary.RunID, env.notifier.completed[0].RunID)

	_, err = service.ImportAll(ctx)
	assert.ErrorIs(t, err, ErrLockActive)
	assert.Len(t, env.notifier.completed, 1)
}

func TestServiceImportAllWithoutFeeds(t *testing.T) {
	env := newTestEnv(t)
	registry := source.NewRegistry(env.feeds, env.categories)
	service := NewService(env.importer, registry, NewLock(env.options, time.Hour), env.notifier)

	_, err := service.ImportAll(context.Background())
	assert.ErrorIs(t, err, ErrNoSources)
	assert.Empty(t, env.notifier.completed)
}

func TestServiceImportFeedIgnoresLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registry := source.NewRegistry(env.feeds, env.categories)
	lock := NewLock(env.options, time.Hour)
	service := NewService(env.importer, registry, lock, env.notifier)

	require.NoError(t, lock.Acquire(ctx))

	server := serveFeed(t, rss(`<item><title>On demand</title></item>`))
	feed, err := registry.Register(ctx, server.URL, env.category.ID, nil)
	require.NoError(t, err)

	summary, err := service.ImportFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Published)

	_, err = service.ImportFeed(ctx, 999)
	assert.ErrorIs(t, err, source.ErrFeedNotFound)
}

func TestResolveAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := database.NewUserRepository(env.db)

	id, err := ResolveAuthor(ctx, users, "")
	require.NoError(t, err)
	assert.Nil(t, id)

	admin := &database.User{Name: "Admin", Email: "admin@example.com", Role: database.RoleAdmin}
	require.NoError(t, users.CreateUser(ctx, admin))
	id, err = ResolveAuthor(ctx, users, "missing@example.com")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, admin.ID, *id)

	root := &database.User{Name: "Root", Email: "root@example.com", Role: database.RoleSuperAdmin}
	require.NoError(t, users.CreateUser(ctx, root))
	id, err = ResolveAuthor(ctx, users, "")
	require.NoError(t, err)
	assert.Equal(t, root.ID, *id)

	author := &database.User{Name: "Writer", Email: "writer@example.com", Role: database.RoleAuthor}
	require.NoError(t, users.CreateUser(ctx, author))
	id, err = ResolveAuthor(ctx, users, "writer@example.com")
	require.NoError(t, err)
	assert.Equal(t, author.ID, *id)
}

func formatUnix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
