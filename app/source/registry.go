package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-importer/app/database"
)

// Registry manages feed source registrations. The import pipeline only reads
// from it; all mutations come from the admin API and the seeder.
type Registry struct {
	feeds      database.FeedRepository
	categories database.CategoryRepository
}

func NewRegistry(feeds database.FeedRepository, categories database.CategoryRepository) *Registry {
	return &Registry{
		feeds:      feeds,
		categories: categories,
	}
}

// Page is one page of active feeds
type Page struct {
	Feeds   []database.Feed `json:"feeds"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// Register canonicalizes rawURL and stores a new feed. The fingerprint check
// covers trashed feeds as well.
func (r *Registry) Register(ctx context.Context, rawURL string, categoryID int64, userID *int64) (*database.Feed, error) {
	canonical := NormalizeURL(rawURL)
	if err := ValidateURL(canonical); err != nil {
		return nil, err
	}

	if err := r.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	hash := Fingerprint(canonical)
	existing, err := r.feeds.GetFeedByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateURL
	}

	feed := &database.Feed{
		URL:        canonical,
		Hash:       hash,
		CategoryID: &categoryID,
		UserID:     userID,
	}
	if err := r.feeds.CreateFeed(ctx, feed); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateURL
		}
		return nil, err
	}

	slog.Info("Feed registered", "feed_id", feed.ID, "url", feed.URL)
	return feed, nil
}

// Update changes the URL and category of an active feed
func (r *Registry) Update(ctx context.Context, id int64, rawURL string, categoryID int64) (*database.Feed, error) {
	canonical := NormalizeURL(rawURL)
	if err := ValidateURL(canonical); err != nil {
		return nil, err
	}

	feed, err := r.feeds.GetFeed(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, ErrFeedNotFound
	}

	if err := r.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	if feed.URL != canonical {
		hash := Fingerprint(canonical)
		existing, err := r.feeds.GetFeedByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != feed.ID {
			return nil, ErrDuplicateURL
		}
		feed.URL = canonical
		feed.Hash = hash
	}
	feed.CategoryID = &categoryID

	if err := r.feeds.UpdateFeed(ctx, feed); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateURL
		}
		return nil, err
	}

	return feed, nil
}

// Trash soft-deletes an active feed
func (r *Registry) Trash(ctx context.Context, id int64) error {
	feed, err := r.feeds.GetFeed(ctx, id, false)
	if err != nil {
		return err
	}
	if feed == nil {
		return ErrFeedNotFound
	}
	return r.feeds.TrashFeed(ctx, id)
}

func (r *Registry) Restore(ctx context.Context, id int64) error {
	feed, err := r.feeds.GetFeed(ctx, id, true)
	if err != nil {
		return err
	}
	if feed == nil {
		return ErrFeedNotFound
	}
	return r.feeds.RestoreFeed(ctx, id)
}

// ForceDelete permanently removes a feed that is already in the trash
func (r *Registry) ForceDelete(ctx context.Context, id int64) error {
	deleted, err := r.feeds.DeleteTrashedFeed(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFeedNotFound
	}
	return nil
}

// EmptyTrash deletes every trashed feed and returns how many were removed.
// It keeps going after a failed delete and reports the first error.
func (r *Registry) EmptyTrash(ctx context.Context) (int, error) {
	trashed, err := r.feeds.ListTrashedFeeds(ctx)
	if err != nil {
		return 0, err
	}

	var firstErr error
	deleted := 0
	for _, feed := range trashed {
		ok, err := r.feeds.DeleteTrashedFeed(ctx, feed.ID)
		if err != nil {
			slog.Error("Failed to delete trashed feed", "feed_id", feed.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			deleted++
		}
	}

	return deleted, firstErr
}

// List returns one page of active feeds, newest first. Pages start at 1.
func (r *Registry) List(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	total, err := r.feeds.GetActiveFeedCount(ctx)
	if err != nil {
		return nil, err
	}

	feeds, err := r.feeds.ListActiveFeeds(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	return &Page{Feeds: feeds, Total: total, Page: page, PerPage: perPage}, nil
}

func (r *Registry) ListTrashed(ctx context.Context) ([]database.Feed, error) {
	return r.feeds.ListTrashedFeeds(ctx)
}

// Get returns an active feed
func (r *Registry) Get(ctx context.Context, id int64) (*database.Feed, error) {
	feed, err := r.feeds.GetFeed(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, ErrFeedNotFound
	}
	return feed, nil
}

// ActiveURLs lists the URL of every active feed
func (r *Registry) ActiveURLs(ctx context.Context) ([]string, error) {
	urls, err := r.feeds.GetActiveFeedURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed sources: %w", err)
	}
	return urls, nil
}

func (r *Registry) requireCategory(ctx context.Context, categoryID int64) error {
	category, err := r.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}
