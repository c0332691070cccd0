package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.ScreenshotStore = (*ScreenshotRepo)(nil)

// ScreenshotRepo is the SQLite implementation of the ScreenshotStore port.
type ScreenshotRepo struct {
	db *DB
}

// NewScreenshotRepo creates a new ScreenshotRepo backed by the given DB.
func NewScreenshotRepo(db *DB) *ScreenshotRepo {
	return &ScreenshotRepo{db: db}
}

// Create inserts a screenshot and returns it with the assigned ID.
func (r *ScreenshotRepo) Create(ctx context.Context, s model.Screenshot) (model.Screenshot, error) {
	res, err := r.db.Writer.ExecContext(ctx,
		`INSERT INTO screenshots (review_request_id, caption, draft_caption, path)
		 VALUES (?, ?, ?, ?)`,
		s.ReviewRequestID, s.Caption, s.DraftCaption, s.Path)
	if err != nil {
		return model.Screenshot{}, fmt.Errorf("insert screenshot: %w", err)
	}

	s.ID, err = res.LastInsertId()
	if err != nil {
		return model.Screenshot{}, fmt.Errorf("screenshot insert id: %w", err)
	}

	return s, nil
}

// GetByID retrieves a screenshot by id. Returns fault.ErrNotFound if absent.
func (r *ScreenshotRepo) GetByID(ctx context.Context, id int64) (*model.Screenshot, error) {
	var s model.Screenshot

	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT id, review_request_id, caption, draft_caption, path
		 FROM screenshots WHERE id = ?`, id).
		Scan(&s.ID, &s.ReviewRequestID, &s.Caption, &s.DraftCaption, &s.Path)
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get screenshot %d: %w", id, err)
	}

	return &s, nil
}

// ListByReviewRequest returns the request's screenshots in id order.
func (r *ScreenshotRepo) ListByReviewRequest(ctx context.Context, reviewRequestID int64) ([]model.Screenshot, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, review_request_id, caption, draft_caption, path
		 FROM screenshots WHERE review_request_id = ? ORDER BY id`, reviewRequestID)
	if err != nil {
		return nil, fmt.Errorf("query screenshots: %w", err)
	}
	defer rows.Close()

	var shots []model.Screenshot
	for rows.Next() {
		var s model.Screenshot
		if err := rows.Scan(&s.ID, &s.ReviewRequestID, &s.Caption, &s.DraftCaption, &s.Path); err != nil {
			return nil, fmt.Errorf("scan screenshot: %w", err)
		}
		shots = append(shots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screenshots: %w", err)
	}

	return shots, nil
}
