package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// SiteStore defines the driven port for local site persistence and
// membership checks.
type SiteStore interface {
	Create(ctx context.Context, site model.LocalSite) (model.LocalSite, error)
	GetByName(ctx context.Context, name string) (*model.LocalSite, error)
	ListAll(ctx context.Context) ([]model.LocalSite, error)
	AddMember(ctx context.Context, siteID, userID int64) error
	RemoveMember(ctx context.Context, siteID, userID int64) error
	IsMember(ctx context.Context, siteID, userID int64) (bool, error)
}
