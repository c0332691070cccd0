package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.WatchStore = (*WatchRepo)(nil)

// WatchRepo is the SQLite implementation of the WatchStore port.
type WatchRepo struct {
	db *DB
}

// NewWatchRepo creates a new WatchRepo backed by the given DB.
func NewWatchRepo(db *DB) *WatchRepo {
	return &WatchRepo{db: db}
}

// Watch marks the review request as watched by the user. Watching an
// already-watched request is a no-op.
func (r *WatchRepo) Watch(ctx context.Context, userID, reviewRequestID int64) error {
	_, err := r.db.Writer.ExecContext(ctx, `
		INSERT INTO watched_review_requests (user_id, review_request_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, review_request_id) DO NOTHING`,
		userID, reviewRequestID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert watch: %w", err)
	}

	return nil
}

// Unwatch removes the watch. Returns fault.ErrNotFound if the user was not
// watching the request.
func (r *WatchRepo) Unwatch(ctx context.Context, userID, reviewRequestID int64) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM watched_review_requests WHERE user_id = ? AND review_request_id = ?`,
		userID, reviewRequestID)
	if err != nil {
		return fmt.Errorf("delete watch: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("watch rows affected: %w", err)
	}
	if n == 0 {
		return fault.ErrNotFound
	}

	return nil
}

// ListWatchedIDs returns the user's watched review request ids, oldest
// watch first.
func (r *WatchRepo) ListWatchedIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Reader.QueryContext(ctx, `
		SELECT review_request_id FROM watched_review_requests
		WHERE user_id = ? ORDER BY created_at, review_request_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query watches: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watches: %w", err)
	}

	return ids, nil
}
