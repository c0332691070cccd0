package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// RepositoryStore defines the driven port for repository records.
type RepositoryStore interface {
	Create(ctx context.Context, repo model.Repository) (model.Repository, error)
	GetByID(ctx context.Context, id int64) (*model.Repository, error)
	ListBySite(ctx context.Context, siteID *int64) ([]model.Repository, error)
}
