package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const categoryColumns = `id, name, slug, parent_id, language, created_at`

var _ CategoryRepository = (*CategoryRepo)(nil)

type CategoryRepo struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var category Category
	err := r.db.GetContext(ctx, &category, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// GetTopCategories returns parentless categories of a language, excluding the
// reserved "public" and "private" slugs
func (r *CategoryRepo) GetTopCategories(ctx context.Context, language string) ([]Category, error) {
	categories := []Category{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE parent_id IS NULL
		  AND language = ?
		  AND slug NOT IN ('public', 'private')
		ORDER BY name, id
	`, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get top categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepo) GetChildCategories(ctx context.Context, parentID int64) ([]Category, error) {
	categories := []Category{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE parent_id = ?
		ORDER BY name, id
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child categories: %w", err)
	}

	return categories, nil
}

// FindCategory looks a category up by name under the given parent (nil for top level)
func (r *CategoryRepo) FindCategory(ctx context.Context, name, language string, parentID *int64) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = ? AND language = ?`
	args := []any{name, language}
	if parentID == nil {
		query += ` AND parent_id IS NULL`
	} else {
		query += ` AND parent_id = ?`
		args = append(args, *parentID)
	}
	query += ` ORDER BY id LIMIT 1`

	var category Category
	err := r.db.GetContext(ctx, &category, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepo) CreateCategory(ctx context.Context, category *Category) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name, slug, parent_id, language, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, category.Name, category.Slug, category.ParentID, category.Language, now)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("create category", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistenceError("read category ID", err)
	}

	category.ID = id
	category.CreatedAt = now
	return nil
}
