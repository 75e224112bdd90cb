package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ TagRepository = (*TagRepo)(nil)

type TagRepo struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

func (r *TagRepo) GetTagBySlug(ctx context.Context, slug, language, postType string) (*Tag, error) {
	var tag Tag
	err := r.db.GetContext(ctx, &tag, `
		SELECT id, name, slug, language, post_type, created_at
		FROM tags
		WHERE slug = ? AND language = ? AND post_type = ?
	`, slug, language, postType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

func (r *TagRepo) CreateTag(ctx context.Context, tag *Tag) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO tags (name, slug, language, post_type, created_at) VALUES (?, ?, ?, ?, ?)
	`, tag.Name, tag.Slug, tag.Language, tag.PostType, now)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("create tag", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistenceError("read tag ID", err)
	}

	tag.ID = id
	tag.CreatedAt = now
	return nil
}
