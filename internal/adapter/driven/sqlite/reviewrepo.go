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

var _ driven.ReviewStore = (*ReviewRepo)(nil)

// ReviewRepo is the SQLite implementation of the ReviewStore port interface.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo backed by the given DB.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

const reviewColumns = `id, review_request_id, user_id, public, ship_it,
	body_top, body_bottom, base_reply_to_id, created_at`

// GetOrCreatePending returns the existing private review for (request,
// user, reply target), creating one if none exists. The second return value
// is true when a new review was created.
func (r *ReviewRepo) GetOrCreatePending(ctx context.Context, reviewRequestID, userID int64, baseReplyToID *int64) (model.Review, bool, error) {
	const query = `
		SELECT ` + reviewColumns + ` FROM reviews
		WHERE review_request_id = ? AND user_id = ? AND public = 0
		  AND COALESCE(base_reply_to_id, 0) = ?
	`

	var replyKey int64
	if baseReplyToID != nil {
		replyKey = *baseReplyToID
	}

	existing, err := scanReview(r.db.Reader.QueryRowContext(ctx, query,
		reviewRequestID, userID, replyKey))
	if err == nil {
		return *existing, false, nil
	}
	if err != sql.ErrNoRows {
		return model.Review{}, false, fmt.Errorf("find pending review: %w", err)
	}

	review := model.Review{
		ReviewRequestID: reviewRequestID,
		UserID:          userID,
		BaseReplyToID:   baseReplyToID,
		Timestamp:       time.Now().UTC(),
	}

	res, err := r.db.Writer.ExecContext(ctx, `
		INSERT INTO reviews (review_request_id, user_id, public, ship_it,
			body_top, body_bottom, base_reply_to_id, created_at)
		VALUES (?, ?, 0, 0, '', '', ?, ?)`,
		reviewRequestID, userID, nullableID(baseReplyToID), review.Timestamp,
	)
	if err != nil {
		return model.Review{}, false, fmt.Errorf("insert pending review: %w", err)
	}

	review.ID, err = res.LastInsertId()
	if err != nil {
		return model.Review{}, false, fmt.Errorf("review insert id: %w", err)
	}

	return review, true, nil
}

// GetByID retrieves a review by id. Returns fault.ErrNotFound if absent.
func (r *ReviewRepo) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	review, err := scanReview(r.db.Reader.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}

	return review, nil
}

// Update rewrites the mutable fields of a pending review.
func (r *ReviewRepo) Update(ctx context.Context, review model.Review) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`UPDATE reviews SET ship_it = ?, body_top = ?, body_bottom = ? WHERE id = ? AND public = 0`,
		boolToInt(review.ShipIt), review.BodyTop, review.BodyBottom, review.ID)
	if err != nil {
		return fmt.Errorf("update review %d: %w", review.ID, err)
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

// Publish flips a review public exactly once. If the review is already
// public (or gone) no row matches and fault.ErrNotFound is reported, which
// also serializes concurrent double publishes.
func (r *ReviewRepo) Publish(ctx context.Context, id int64) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`UPDATE reviews SET public = 1, created_at = ? WHERE id = ? AND public = 0`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("publish review %d: %w", id, err)
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

// Delete removes a review and its comments.
func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Writer.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
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

// ListPublicByReviewRequest returns public root reviews ordered by publish time.
func (r *ReviewRepo) ListPublicByReviewRequest(ctx context.Context, reviewRequestID int64) ([]model.Review, error) {
	const query = `
		SELECT ` + reviewColumns + ` FROM reviews
		WHERE review_request_id = ? AND public = 1 AND base_reply_to_id IS NULL
		ORDER BY created_at, id
	`

	return r.queryReviews(ctx, query, reviewRequestID)
}

// ListPublicReplies returns public replies to a review ordered by publish time.
func (r *ReviewRepo) ListPublicReplies(ctx context.Context, reviewID int64) ([]model.Review, error) {
	const query = `
		SELECT ` + reviewColumns + ` FROM reviews
		WHERE base_reply_to_id = ? AND public = 1
		ORDER BY created_at, id
	`

	return r.queryReviews(ctx, query, reviewID)
}

// GetPendingReply returns the user's private reply to a review, or
// fault.ErrNotFound when none is open.
func (r *ReviewRepo) GetPendingReply(ctx context.Context, reviewID, userID int64) (*model.Review, error) {
	review, err := scanReview(r.db.Reader.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews
		 WHERE base_reply_to_id = ? AND user_id = ? AND public = 0`,
		reviewID, userID))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending reply: %w", err)
	}

	return review, nil
}

// PublicReviewerIDs returns distinct authors of public root reviews on the
// request, ordered by their first review.
func (r *ReviewRepo) PublicReviewerIDs(ctx context.Context, reviewRequestID int64) ([]int64, error) {
	const query = `
		SELECT user_id FROM reviews
		WHERE review_request_id = ? AND public = 1 AND base_reply_to_id IS NULL
		GROUP BY user_id
		ORDER BY MIN(created_at), MIN(id)
	`

	ids, err := queryIDs(ctx, r.db.Reader, query, reviewRequestID)
	if err != nil {
		return nil, fmt.Errorf("query reviewer ids: %w", err)
	}

	return ids, nil
}

func (r *ReviewRepo) queryReviews(ctx context.Context, query string, args ...any) ([]model.Review, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

func scanReview(s scanner) (*model.Review, error) {
	var review model.Review
	var public, shipIt int
	var baseReplyTo sql.NullInt64
	var createdAt string

	err := s.Scan(
		&review.ID, &review.ReviewRequestID, &review.UserID, &public, &shipIt,
		&review.BodyTop, &review.BodyBottom, &baseReplyTo, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	review.Public = public != 0
	review.ShipIt = shipIt != 0
	review.BaseReplyToID = idOrNil(baseReplyTo)

	review.Timestamp, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &review, nil
}
