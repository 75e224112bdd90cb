package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, name, email, role, created_at FROM users WHERE email = ?
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetFirstUserByRole returns the oldest user holding role
func (r *UserRepo) GetFirstUserByRole(ctx context.Context, role string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, name, email, role, created_at
		FROM users
		WHERE role = ?
		ORDER BY id
		LIMIT 1
	`, role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by role: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO users (name, email, role, created_at) VALUES (?, ?, ?, ?)
	`, user.Name, user.Email, user.Role, now)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return persistenceError("create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistenceError("read user ID", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}
