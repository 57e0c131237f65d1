// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserStore provides user persistence on top of *sql.DB.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user with the given pre-hashed password.
// Returns ErrDuplicateEmail if the email is already registered.
func (s *UserStore) Create(ctx context.Context, email, hashedPassword string) (User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, hashed_password) VALUES (?, ?)", email, hashedPassword)
	if err != nil {
		return User{}, mapConstraintErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("store: last insert id: %w", err)
	}
	return User{ID: id, Email: email, HashedPassword: hashedPassword}, nil
}

// ByEmail returns the user with the given email, or ErrNotFound.
func (s *UserStore) ByEmail(ctx context.Context, email string) (User, error) {
	var (
		u      User
		avatar sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, hashed_password, is_verified, avatar_url FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsVerified, &avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("store: user by email: %w", err)
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return u, nil
}

// MarkVerified sets the verified flag for the user with the given email.
func (s *UserStore) MarkVerified(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_verified = 1 WHERE email = ?", email)
	if err != nil {
		return fmt.Errorf("store: mark verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAvatarURL stores the avatar URL for the user with the given email.
func (s *UserStore) SetAvatarURL(ctx context.Context, email, url string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET avatar_url = ? WHERE email = ?", url, email)
	if err != nil {
		return fmt.Errorf("store: set avatar url: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
