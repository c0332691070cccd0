package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// ReviewStore defines the driven port for reviews and replies.
//
// GetOrCreatePending is the draft-review entry point: it returns the
// existing private review for (review request, user, base reply target) or
// creates one. Publish flips public exactly once; a second publish of the
// same review reports fault.ErrNotFound via zero rows, which callers
// surface as an invalid-state condition.
type ReviewStore interface {
	GetOrCreatePending(ctx context.Context, reviewRequestID, userID int64, baseReplyToID *int64) (model.Review, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	Update(ctx context.Context, r model.Review) error
	Publish(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ListPublicByReviewRequest(ctx context.Context, reviewRequestID int64) ([]model.Review, error)
	ListPublicReplies(ctx context.Context, reviewID int64) ([]model.Review, error)
	GetPendingReply(ctx context.Context, reviewID, userID int64) (*model.Review, error)
	// PublicReviewerIDs returns the distinct authors of public root reviews
	// on the request, ordered by first review time.
	PublicReviewerIDs(ctx context.Context, reviewRequestID int64) ([]int64, error)
}
