package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// UserStore defines the driven port for user persistence.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	SetNotifyEnabled(ctx context.Context, id int64, enabled bool) error
}
