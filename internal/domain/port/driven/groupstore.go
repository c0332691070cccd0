package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// GroupStore defines the driven port for review group persistence.
// Group names are unique within a local site scope; siteID nil addresses
// the default scope.
type GroupStore interface {
	Create(ctx context.Context, g model.Group) (model.Group, error)
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	GetByName(ctx context.Context, siteID *int64, name string) (*model.Group, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Group, error)
	ListBySite(ctx context.Context, siteID *int64) ([]model.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	MemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}
