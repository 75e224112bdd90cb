package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const feedColumns = `id, url, hash, category_id, user_id, created_at, updated_at, deleted_at`

var _ FeedRepository = (*FeedRepo)(nil)

// FeedRepo handles database operations for registered feed sources
type FeedRepo struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

// GetFeed retrieves a feed by its ID, optionally including trashed rows
func (r *FeedRepo) GetFeed(ctx context.Context, id int64, withTrashed bool) (*Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds WHERE id = ?`
	if !withTrashed {
		query += ` AND deleted_at IS NULL`
	}

	var feed Feed
	err := r.db.GetContext(ctx, &feed, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by ID: %w", err)
	}

	return &feed, nil
}

// GetActiveFeedByURL retrieves a non-trashed feed by its canonical URL
func (r *FeedRepo) GetActiveFeedByURL(ctx context.Context, url string) (*Feed, error) {
	var feed Feed
	err := r.db.GetContext(ctx, &feed, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE url = ? AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return &feed, nil
}

// GetFeedByHash retrieves a feed by its URL fingerprint, trashed rows included
func (r *FeedRepo) GetFeedByHash(ctx context.Context, hash string) (*Feed, error) {
	var feed Feed
	err := r.db.GetContext(ctx, &feed, `SELECT `+feedColumns+` FROM feeds WHERE hash = ?`, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by hash: %w", err)
	}

	return &feed, nil
}

// ListActiveFeeds returns non-trashed feeds, newest first. A limit of 0 returns all rows.
func (r *FeedRepo) ListActiveFeeds(ctx context.Context, limit, offset int) ([]Feed, error) {
	if limit <= 0 {
		limit = -1
	}

	feeds := []Feed{}
	err := r.db.SelectContext(ctx, &feeds, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	return feeds, nil
}

// ListTrashedFeeds returns soft-deleted feeds
func (r *FeedRepo) ListTrashedFeeds(ctx context.Context) ([]Feed, error) {
	feeds := []Feed{}
	err := r.db.SelectContext(ctx, &feeds, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed feeds: %w", err)
	}

	return feeds, nil
}

// GetActiveFeedURLs returns the URL of every non-trashed feed in registration order
func (r *FeedRepo) GetActiveFeedURLs(ctx context.Context) ([]string, error) {
	urls := []string{}
	err := r.db.SelectContext(ctx, &urls, `SELECT url FROM feeds WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed URLs: %w", err)
	}
	return urls, nil
}

// GetActiveFeedCount returns the number of non-trashed feeds
func (r *FeedRepo) GetActiveFeedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM feeds WHERE deleted_at IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// CreateFeed inserts a feed and sets its ID and timestamps
func (r *FeedRepo) CreateFeed(ctx context.Context, feed *Feed) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO feeds (url, hash, category_id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, feed.URL, feed.Hash, feed.CategoryID, feed.UserID, now, now)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("create feed", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistenceError("read feed ID", err)
	}

	feed.ID = id
	feed.CreatedAt = now
	feed.UpdatedAt = now

	return nil
}

// UpdateFeed stores the URL, hash and category of an existing feed
func (r *FeedRepo) UpdateFeed(ctx context.Context, feed *Feed) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET url = ?, hash = ?, category_id = ?, updated_at = ?
		WHERE id = ?
	`, feed.URL, feed.Hash, feed.CategoryID, now, feed.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("update feed", err)
	}

	feed.UpdatedAt = now
	return nil
}

// TrashFeed soft-deletes a feed
func (r *FeedRepo) TrashFeed(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL
	`, now, now, id)
	if err != nil {
		return persistenceError("trash feed", err)
	}
	return nil
}

// RestoreFeed clears the soft-delete marker of a feed
func (r *FeedRepo) RestoreFeed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds SET deleted_at = NULL, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return persistenceError("restore feed", err)
	}
	return nil
}

// DeleteTrashedFeed permanently removes a feed that is already in the trash
func (r *FeedRepo) DeleteTrashedFeed(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ? AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, persistenceError("delete feed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError("delete feed", err)
	}

	return affected > 0, nil
}
