package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ OptionRepository = (*OptionRepo)(nil)

// OptionRepo is a small key/value store for process-wide settings
type OptionRepo struct {
	db *DB
}

func NewOptionRepository(db *DB) *OptionRepo {
	return &OptionRepo{db: db}
}

func (r *OptionRepo) GetOption(ctx context.Context, name string) (*Option, error) {
	var option Option
	err := r.db.GetContext(ctx, &option, `SELECT name, value, updated_at FROM options WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}

	return &option, nil
}

func (r *OptionRepo) SetOption(ctx context.Context, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, value, time.Now().UTC())
	if err != nil {
		return persistenceError("set option", err)
	}
	return nil
}
