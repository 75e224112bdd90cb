package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/news-importer/app/content"
	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/events"
	"github.com/lysyi3m/news-importer/app/source"
	"github.com/lysyi3m/news-importer/app/syndication"
)

// MediaImporter stores a remote image and returns its media ID
type MediaImporter interface {
	Import(ctx context.Context, remoteURL string) (int64, error)
}

// ContentExtractor fetches the readable body of an article page
type ContentExtractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

type Dependencies struct {
	Feeds    database.FeedRepository
	Articles database.ArticleRepository
	Tags     database.TagRepository
	Meta     database.MetaRepository

	Media     MediaImporter    // optional
	Extractor ContentExtractor // optional
	Notifier  events.Notifier  // optional

	HTTPClient *http.Client
	UserAgent  string
	Language   string
	PostType   string
	AuthorID   *int64
}

// Summary describes the outcome of one Run
type Summary struct {
	RunID        string    `json:"run_id"`
	Feeds        int       `json:"feeds"`
	FeedsSkipped int       `json:"feeds_skipped"`
	Entries      int       `json:"entries"`
	Published    int       `json:"published"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Importer turns feed entries into published articles. Feeds and entries are
// processed one at a time; the slug and tag checks rely on that.
type Importer struct {
	deps      Dependencies
	sanitizer *content.Sanitizer
}

func New(deps Dependencies) *Importer {
	if deps.Notifier == nil {
		deps.Notifier = events.Nop{}
	}
	if deps.PostType == "" {
		deps.PostType = database.PostTypePost
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Importer{
		deps:      deps,
		sanitizer: content.NewSanitizer(),
	}
}

// Run imports every entry of every registered feed in urls. A failing feed or
// entry is logged and skipped; only an empty url list fails the run.
func (i *Importer) Run(ctx context.Context, urls []string) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	if len(urls) == 0 {
		summary.FinishedAt = time.Now().UTC()
		return summary, ErrNoSources
	}

	slog.Info("Import started", "run_id", summary.RunID, "feeds", len(urls))

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, err
		}

		if !i.importFeed(ctx, url, &summary) {
			summary.FeedsSkipped++
			continue
		}
		summary.Feeds++
	}

	summary.FinishedAt = time.Now().UTC()

	slog.Info("Import finished",
		"run_id", summary.RunID,
		"duration", summary.Duration(),
		"feeds", summary.Feeds,
		"feeds_skipped", summary.FeedsSkipped,
		"entries", summary.Entries,
		"published", summary.Published,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

// importFeed returns false when the feed was skipped as a whole
func (i *Importer) importFeed(ctx context.Context, url string, summary *Summary) bool {
	url = source.NormalizeURL(url)

	feed, err := i.deps.Feeds.GetActiveFeedByURL(ctx, url)
	if err != nil {
		slog.Error("Failed to look up feed", "feed", url, "error", err)
		return false
	}
	if feed == nil {
		slog.Warn("Feed not registered, skipping", "feed", url)
		return false
	}
	if feed.CategoryID == nil {
		slog.Warn("Category not found, skipping", "feed", url)
		return false
	}

	reader := syndication.NewReader(i.deps.HTTPClient, i.deps.UserAgent)
	if err := reader.Open(ctx, url); err != nil {
		slog.Warn("Failed to open feed, skipping", "feed", url, "error", err)
		return false
	}

	entries, err := reader.Entries(0)
	if err != nil {
		slog.Warn("Failed to read feed entries, skipping", "feed", url, "error", err)
		return false
	}

	slog.Debug("Feed loaded", "feed", url, "format", reader.Format(), "entries", len(entries))

	for _, entry := range entries {
		summary.Entries++

		err := i.importEntry(ctx, feed, entry)
		switch {
		case err == nil:
			summary.Published++
		case errors.Is(err, ErrEntryValidation):
			summary.Skipped++
			slog.Debug("Entry skipped", "feed", url, "title", entry.Title, "error", err)
		default:
			summary.Failed++
			slog.Error("Failed to import entry", "feed", url, "title", entry.Title, "error", err)
		}
	}

	return true
}

func (i *Importer) importEntry(ctx context.Context, feed *database.Feed, entry syndication.Entry) error {
	if strings.TrimSpace(entry.Title) == "" {
		return entryError("", ErrMissingTitle)
	}

	title := i.sanitizer.Title(entry.Title)
	slug := content.Slugify(title)
	if slug == "" {
		return entryError(entry.Title, ErrEmptySlug)
	}

	// any existing article blocks the slug, imported or not
	exists, err := i.deps.Articles.SlugExists(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return entryError(title, ErrDuplicateSlug)
	}

	rawBody := strings.TrimSpace(entry.Description)
	if rawBody == "" {
		rawBody = strings.TrimSpace(entry.Content)
	}
	if rawBody == "" && entry.Link != "" && i.deps.Extractor != nil {
		extracted, err := i.deps.Extractor.Extract(ctx, entry.Link)
		if err != nil {
			slog.Debug("Content extraction failed", "link", entry.Link, "error", err)
		} else {
			rawBody = extracted
		}
	}
	body := i.sanitizer.Body(rawBody)

	article := &database.Article{
		Title:    title,
		Slug:     slug,
		Content:  body,
		Excerpt:  i.sanitizer.Excerpt(body),
		UserID:   i.deps.AuthorID,
		Language: i.deps.Language,
		PostType: i.deps.PostType,
		Status:   database.StatusDraft,
	}
	if err := i.deps.Articles.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return entryError(title, ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to create article: %w", err)
	}

	// enrichment failures below are logged and do not stop publication
	if err := i.deps.Articles.SetArticleCategories(ctx, article.ID, []int64{*feed.CategoryID}); err != nil {
		slog.Warn("Failed to set article category", "article_id", article.ID, "error", err)
	}

	if entry.Keywords != "" {
		i.attachTags(ctx, article.ID, entry.Keywords)
	}

	imageURL := strings.TrimSpace(entry.Image)
	if imageURL == "" {
		imageURL = strings.TrimSpace(entry.Thumbnail)
	}
	if imageURL != "" && i.deps.Media != nil {
		mediaID, err := i.deps.Media.Import(ctx, imageURL)
		if err != nil {
			slog.Warn("Failed to import featured image", "article_id", article.ID, "url", imageURL, "error", err)
		} else {
			i.upsertMeta(ctx, article.ID, database.MetaPostImage, strconv.FormatInt(mediaID, 10))
		}
	}

	link := strings.TrimSpace(entry.Link)
	if link != "" {
		i.upsertMeta(ctx, article.ID, database.MetaLinkBack, link)
	}

	if enclosure := strings.TrimSpace(entry.Enclosure); enclosure != "" {
		i.upsertMeta(ctx, article.ID, database.MetaVideoURL, enclosure)
	}

	if err := i.deps.Articles.UpdateArticleStatus(ctx, article.ID, database.StatusPublish); err != nil {
		return fmt.Errorf("failed to publish article: %w", err)
	}
	article.Status = database.StatusPublish

	i.deps.Notifier.ContentImported(ctx, events.ContentImported{
		ArticleID:  article.ID,
		Title:      article.Title,
		Slug:       article.Slug,
		Excerpt:    article.Excerpt,
		Language:   article.Language,
		FeedURL:    feed.URL,
		Link:       link,
		ImportedAt: time.Now().UTC(),
	})

	return nil
}

// attachTags replaces the article's tags with the comma separated keywords.
// Existing associations stay untouched when no keyword yields a tag.
func (i *Importer) attachTags(ctx context.Context, articleID int64, keywords string) {
	seenNames := map[string]bool{}
	seenIDs := map[int64]bool{}
	tagIDs := []int64{}

	for _, raw := range strings.Split(keywords, ",") {
		name := i.sanitizer.Tag(strings.TrimSpace(raw))
		if name == "" || seenNames[name] {
			continue
		}
		seenNames[name] = true

		id, err := i.resolveTag(ctx, name)
		if err != nil {
			slog.Warn("Failed to resolve tag", "tag", name, "error", err)
			continue
		}
		if id == 0 || seenIDs[id] {
			continue
		}
		seenIDs[id] = true
		tagIDs = append(tagIDs, id)
	}

	if len(tagIDs) == 0 {
		return
	}

	if err := i.deps.Articles.SetArticleTags(ctx, articleID, tagIDs); err != nil {
		slog.Warn("Failed to set article tags", "article_id", articleID, "error", err)
	}
}

// resolveTag returns the ID of the tag whose slug matches name, creating it if
// needed. A zero ID means the name has no usable slug.
func (i *Importer) resolveTag(ctx context.Context, name string) (int64, error) {
	slug := content.Slugify(name)
	if slug == "" {
		return 0, nil
	}

	existing, err := i.deps.Tags.GetTagBySlug(ctx, slug, i.deps.Language, i.deps.PostType)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	tag := &database.Tag{
		Name:     name,
		Slug:     slug,
		Language: i.deps.Language,
		PostType: i.deps.PostType,
	}
	if err := i.deps.Tags.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			existing, lookupErr := i.deps.Tags.GetTagBySlug(ctx, slug, i.deps.Language, i.deps.PostType)
			if lookupErr == nil && existing != nil {
				return existing.ID, nil
			}
		}
		return 0, err
	}

	return tag.ID, nil
}

func (i *Importer) upsertMeta(ctx context.Context, articleID int64, name, value string) {
	if err := i.deps.Meta.UpsertMeta(ctx, articleID, i.deps.Language, name, value); err != nil {
		slog.Warn("Failed to store article meta", "article_id", articleID, "meta", name, "error", err)
	}
}
