package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ MetaRepository = (*MetaRepo)(nil)

type MetaRepo struct {
	db *DB
}

func NewMetaRepository(db *DB) *MetaRepo {
	return &MetaRepo{db: db}
}

func (r *MetaRepo) GetMeta(ctx context.Context, articleID int64, language, name string) (*ArticleMeta, error) {
	var meta ArticleMeta
	err := r.db.GetContext(ctx, &meta, `
		SELECT id, article_id, language, meta_name, meta_value
		FROM article_meta
		WHERE article_id = ? AND language = ? AND meta_name = ?
	`, articleID, language, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article meta: %w", err)
	}

	return &meta, nil
}

func (r *MetaRepo) ListMeta(ctx context.Context, articleID int64) ([]ArticleMeta, error) {
	metas := []ArticleMeta{}
	err := r.db.SelectContext(ctx, &metas, `
		SELECT id, article_id, language, meta_name, meta_value
		FROM article_meta
		WHERE article_id = ?
		ORDER BY meta_name
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list article meta: %w", err)
	}
	return metas, nil
}

// UpsertMeta updates the value stored under (article, language, name) or inserts it
func (r *MetaRepo) UpsertMeta(ctx context.Context, articleID int64, language, name, value string) error {
	existing, err := r.GetMeta(ctx, articleID, language, name)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err = r.db.ExecContext(ctx, `UPDATE article_meta SET meta_value = ? WHERE id = ?`, value, existing.ID)
		if err != nil {
			return persistenceError("update article meta", err)
		}
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO article_meta (article_id, language, meta_name, meta_value) VALUES (?, ?, ?, ?)
	`, articleID, language, name, value)
	if err != nil {
		return persistenceError("insert article meta", err)
	}

	return nil
}
