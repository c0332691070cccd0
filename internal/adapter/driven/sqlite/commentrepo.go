package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.CommentStore = (*CommentRepo)(nil)

// CommentRepo is the SQLite implementation of the CommentStore port.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new CommentRepo backed by the given DB.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const diffCommentColumns = `id, review_id, filediff_id, interfilediff_id,
	first_line, num_lines, text, issue_opened, reply_to_id, created_at`

// CreateDiffComment inserts a diff comment and returns it with the assigned ID.
func (r *CommentRepo) CreateDiffComment(ctx context.Context, c model.DiffComment) (model.DiffComment, error) {
	c.Timestamp = time.Now().UTC()

	res, err := r.db.Writer.ExecContext(ctx, `
		INSERT INTO diff_comments (review_id, filediff_id, interfilediff_id,
			first_line, num_lines, text, issue_opened, reply_to_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ReviewID, c.FileDiffID, nullableID(c.InterFileDiffID),
		c.FirstLine, c.NumLines, c.Text, c.IssueOpened, nullableID(c.ReplyToID), c.Timestamp,
	)
	if err != nil {
		return model.DiffComment{}, fmt.Errorf("insert diff comment: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return model.DiffComment{}, fmt.Errorf("diff comment insert id: %w", err)
	}

	return c, nil
}

// GetDiffComment retrieves a diff comment by id.
func (r *CommentRepo) GetDiffComment(ctx context.Context, id int64) (*model.DiffComment, error) {
	c, err := scanDiffComment(r.db.Reader.QueryRowContext(ctx,
		`SELECT `+diffCommentColumns+` FROM diff_comments WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get diff comment %d: %w", id, err)
	}

	return c, nil
}

// ListDiffCommentsByReview returns the review's diff comments in creation order.
func (r *CommentRepo) ListDiffCommentsByReview(ctx context.Context, reviewID int64) ([]model.DiffComment, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT `+diffCommentColumns+` FROM diff_comments WHERE review_id = ? ORDER BY id`,
		reviewID)
	if err != nil {
		return nil, fmt.Errorf("query diff comments: %w", err)
	}
	defer rows.Close()

	var comments []model.DiffComment
	for rows.Next() {
		c, err := scanDiffComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diff comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diff comments: %w", err)
	}

	return comments, nil
}

const screenshotCommentColumns = `id, review_id, screenshot_id, x, y, w, h,
	text, issue_opened, reply_to_id, created_at`

// CreateScreenshotComment inserts a screenshot comment.
func (r *CommentRepo) CreateScreenshotComment(ctx context.Context, c model.ScreenshotComment) (model.ScreenshotComment, error) {
	c.Timestamp = time.Now().UTC()

	res, err := r.db.Writer.ExecContext(ctx, `
		INSERT INTO screenshot_comments (review_id, screenshot_id, x, y, w, h,
			text, issue_opened, reply_to_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ReviewID, c.ScreenshotID, c.X, c.Y, c.W, c.H,
		c.Text, c.IssueOpened, nullableID(c.ReplyToID), c.Timestamp,
	)
	if err != nil {
		return model.ScreenshotComment{}, fmt.Errorf("insert screenshot comment: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return model.ScreenshotComment{}, fmt.Errorf("screenshot comment insert id: %w", err)
	}

	return c, nil
}

// GetScreenshotComment retrieves a screenshot comment by id.
func (r *CommentRepo) GetScreenshotComment(ctx context.Context, id int64) (*model.ScreenshotComment, error) {
	c, err := scanScreenshotComment(r.db.Reader.QueryRowContext(ctx,
		`SELECT `+screenshotCommentColumns+` FROM screenshot_comments WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get screenshot comment %d: %w", id, err)
	}

	return c, nil
}

// ListScreenshotCommentsByReview returns the review's screenshot comments
// in creation order.
func (r *CommentRepo) ListScreenshotCommentsByReview(ctx context.Context, reviewID int64) ([]model.ScreenshotComment, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT `+screenshotCommentColumns+` FROM screenshot_comments WHERE review_id = ? ORDER BY id`,
		reviewID)
	if err != nil {
		return nil, fmt.Errorf("query screenshot comments: %w", err)
	}
	defer rows.Close()

	var comments []model.ScreenshotComment
	for rows.Next() {
		c, err := scanScreenshotComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan screenshot comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screenshot comments: %w", err)
	}

	return comments, nil
}

func scanDiffComment(s scanner) (*model.DiffComment, error) {
	var c model.DiffComment
	var interdiff, replyTo sql.NullInt64
	var createdAt string

	err := s.Scan(
		&c.ID, &c.ReviewID, &c.FileDiffID, &interdiff,
		&c.FirstLine, &c.NumLines, &c.Text, &c.IssueOpened, &replyTo, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.InterFileDiffID = idOrNil(interdiff)
	c.ReplyToID = idOrNil(replyTo)

	c.Timestamp, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &c, nil
}

func scanScreenshotComment(s scanner) (*model.ScreenshotComment, error) {
	var c model.ScreenshotComment
	var replyTo sql.NullInt64
	var createdAt string

	err := s.Scan(
		&c.ID, &c.ReviewID, &c.ScreenshotID, &c.X, &c.Y, &c.W, &c.H,
		&c.Text, &c.IssueOpened, &replyTo, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.ReplyToID = idOrNil(replyTo)

	c.Timestamp, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &c, nil
}
