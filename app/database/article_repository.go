package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const articleColumns = `id, title, slug, content, excerpt, user_id, language, post_type, status, created_at, updated_at, deleted_at`

var _ ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo stores imported articles and their taxonomy links
type ArticleRepo struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// SlugExists reports whether any article, trashed or not, already uses slug
func (r *ArticleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles WHERE slug = ?`, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *ArticleRepo) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	var article Article
	err := r.db.GetContext(ctx, &article, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by slug: %w", err)
	}

	return &article, nil
}

// ListPublishedArticles returns the newest published articles
func (r *ArticleRepo) ListPublishedArticles(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = -1
	}

	articles := []Article{}
	err := r.db.SelectContext(ctx, &articles, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE status = ? AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, StatusPublish, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) GetArticleCategoryIDs(ctx context.Context, articleID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT category_id FROM article_categories WHERE article_id = ? ORDER BY category_id
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article categories: %w", err)
	}
	return ids, nil
}

func (r *ArticleRepo) GetArticleTagIDs(ctx context.Context, articleID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT tag_id FROM article_tags WHERE article_id = ? ORDER BY tag_id
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article tags: %w", err)
	}
	return ids, nil
}

func (r *ArticleRepo) CreateArticle(ctx context.Context, article *Article) error {
	now := time.Now().UTC()
	if article.PostType == "" {
		article.PostType = PostTypePost
	}
	if article.Status == "" {
		article.Status = StatusDraft
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (title, slug, content, excerpt, user_id, language, post_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.Title, article.Slug, article.Content, article.Excerpt, article.UserID,
		article.Language, article.PostType, article.Status, now, now)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("create article", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistenceError("read article ID", err)
	}

	article.ID = id
	article.CreatedAt = now
	article.UpdatedAt = now
	return nil
}

func (r *ArticleRepo) UpdateArticleStatus(ctx context.Context, articleID int64, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE articles SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now().UTC(), articleID)
	if err != nil {
		return persistenceError("update article status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistenceError("update article status", err)
	}
	if affected == 0 {
		return persistenceError("update article status", sql.ErrNoRows)
	}

	return nil
}

// SetArticleCategories replaces all category associations of an article
func (r *ArticleRepo) SetArticleCategories(ctx context.Context, articleID int64, categoryIDs []int64) error {
	return r.replaceLinks(ctx, "article_categories", "category_id", articleID, categoryIDs)
}

// SetArticleTags replaces all tag associations of an article
func (r *ArticleRepo) SetArticleTags(ctx context.Context, articleID int64, tagIDs []int64) error {
	return r.replaceLinks(ctx, "article_tags", "tag_id", articleID, tagIDs)
}

func (r *ArticleRepo) replaceLinks(ctx context.Context, table, column string, articleID int64, ids []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE article_id = ?`, articleID); err != nil {
		return persistenceError("clear "+table, err)
	}

	insert := `INSERT OR IGNORE INTO ` + table + ` (article_id, ` + column + `) VALUES (?, ?)`
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, insert, articleID, id); err != nil {
			return persistenceError("insert "+table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("commit "+table, err)
	}

	return nil
}
