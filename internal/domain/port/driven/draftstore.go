package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// DraftStore defines the driven port for review request drafts.
//
// Publish and Discard are the two terminal actions on a draft. Publish
// atomically copies the draft fields onto the base review request, flips
// the public flag on first publish, moves any pending diffset into history,
// and deletes the draft; if the draft row is already gone (a concurrent
// publish or discard won) it reports fault.ErrNotFound and leaves the base
// entity untouched.
type DraftStore interface {
	Get(ctx context.Context, reviewRequestID int64) (*model.ReviewRequestDraft, error)
	Create(ctx context.Context, d model.ReviewRequestDraft) (model.ReviewRequestDraft, error)
	Update(ctx context.Context, d model.ReviewRequestDraft) error
	Publish(ctx context.Context, d model.ReviewRequestDraft, firstPublish bool) error
	Discard(ctx context.Context, draftID int64) error
}
