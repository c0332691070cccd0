package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// CommentStore defines the driven port for diff and screenshot comments.
type CommentStore interface {
	CreateDiffComment(ctx context.Context, c model.DiffComment) (model.DiffComment, error)
	GetDiffComment(ctx context.Context, id int64) (*model.DiffComment, error)
	ListDiffCommentsByReview(ctx context.Context, reviewID int64) ([]model.DiffComment, error)
	CreateScreenshotComment(ctx context.Context, c model.ScreenshotComment) (model.ScreenshotComment, error)
	GetScreenshotComment(ctx context.Context, id int64) (*model.ScreenshotComment, error)
	ListScreenshotCommentsByReview(ctx context.Context, reviewID int64) ([]model.ScreenshotComment, error)
}
