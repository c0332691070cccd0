package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, api_token, is_superuser,
	can_delete_review_request, can_submit_as, notify_enabled, created_at`

// Create inserts a user and returns it with the assigned ID.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	const query = `
		INSERT INTO users (
			username, email, api_token, is_superuser,
			can_delete_review_request, can_submit_as, notify_enabled, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Writer.ExecContext(ctx, query,
		u.Username, u.Email, u.APIToken, boolToInt(u.IsSuperuser),
		boolToInt(u.CanDeleteReviewRequest), boolToInt(u.CanSubmitAs),
		boolToInt(u.NotifyEnabled), u.CreatedAt.UTC(),
	)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user %q: %w", u.Username, err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("user insert id: %w", err)
	}

	return u, nil
}

// GetByID retrieves a user by its global id. Returns fault.ErrNotFound if
// no such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetByToken retrieves a user by API token.
func (r *UserRepo) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE api_token = ?`, token)
}

// GetByIDs retrieves users for the given ids, preserving the input order.
// Missing ids are silently skipped.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query users by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]model.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		byID[u.ID] = *u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}

	return users, nil
}

// ListAll returns all users ordered by username.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// SetNotifyEnabled updates the user's notification opt-out flag.
func (r *UserRepo) SetNotifyEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`UPDATE users SET notify_enabled = ? WHERE id = ?`, boolToInt(enabled), id)
	if err != nil {
		return fmt.Errorf("update user %d notify_enabled: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fault.ErrNotFound
	}

	return nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	var isSuper, canDelete, canSubmitAs, notify int
	var createdAt string

	err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.APIToken, &isSuper,
		&canDelete, &canSubmitAs, &notify, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsSuperuser = isSuper != 0
	u.CanDeleteReviewRequest = canDelete != 0
	u.CanSubmitAs = canSubmitAs != 0
	u.NotifyEnabled = notify != 0

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &u, nil
}
