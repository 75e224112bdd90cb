package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ MediaRepository = (*MediaRepo)(nil)

type MediaRepo struct {
	db *DB
}

func NewMediaRepository(db *DB) *MediaRepo {
	return &MediaRepo{db: db}
}

func (r *MediaRepo) GetMediaBySlug(ctx context.Context, slug string) (*MediaFile, error) {
	var media MediaFile
	err := r.db.GetContext(ctx, &media, `
		SELECT id, slug, path, language, created_at FROM media_files WHERE slug = ?
	`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media by slug: %w", err)
	}

	return &media, nil
}

func (r *MediaRepo) CreateMedia(ctx context.Context, media *MediaFile) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO media_files (slug, path, language, created_at) VALUES (?, ?, ?, ?)
	`, media.Slug, media.Path, media.Language, now)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("create media", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistenceError("read media ID", err)
	}

	media.ID = id
	media.CreatedAt = now
	return nil
}
