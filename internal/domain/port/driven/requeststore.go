package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// ReviewRequestStore defines the driven port for review request persistence.
//
// Create allocates both the global ID and the per-site display id (LocalID)
// atomically. All display-id lookups are scoped: GetByLocalID under the
// wrong site behaves exactly like absence.
type ReviewRequestStore interface {
	Create(ctx context.Context, rr model.ReviewRequest) (model.ReviewRequest, error)
	GetByID(ctx context.Context, id int64) (*model.ReviewRequest, error)
	GetByLocalID(ctx context.Context, siteID *int64, localID int64) (*model.ReviewRequest, error)
	// ListBySite returns every review request in the given scope; callers
	// apply the visibility predicate.
	ListBySite(ctx context.Context, siteID *int64) ([]model.ReviewRequest, error)
	SetStatus(ctx context.Context, id int64, status model.ReviewRequestStatus) error
	Delete(ctx context.Context, id int64) error
}
