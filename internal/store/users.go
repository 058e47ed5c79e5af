package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/airbnblite/airbot/internal/model"
)

const userColumns = `id, name, email, password_hash, avatar, is_host`

// ListUsers returns all users.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns the user with id.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateUser registers a user. Returns ErrConflict when the email is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, avatar, is_host) VALUES (?, ?, ?, ?, ?)`,
		req.Name, strings.ToLower(req.Email), string(hash), req.Avatar, req.IsHost)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// Authenticate returns the user matching email and password.
func (s *SQLiteStore) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// UpdateUser applies the non-nil fields of req to the user with id.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	var (
		sets []string
		args []interface{}
	)
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *req.Avatar)
	}
	if req.IsHost != nil {
		sets = append(sets, "is_host = ?")
		args = append(args, *req.IsHost)
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, string(hash))
	}
	if len(sets) == 0 {
		return nil, ErrEmptyUpdate
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}
