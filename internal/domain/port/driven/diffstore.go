package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// DiffStore defines the driven port for diffsets and file diffs.
// CreateDiffSet allocates the next monotonic revision for the review request.
type DiffStore interface {
	CreateDiffSet(ctx context.Context, reviewRequestID int64, name string, files []model.FileDiff) (model.DiffSet, error)
	GetByRevision(ctx context.Context, reviewRequestID int64, revision int) (*model.DiffSet, error)
	ListByReviewRequest(ctx context.Context, reviewRequestID int64, historyOnly bool) ([]model.DiffSet, error)
	GetFileDiff(ctx context.Context, id int64) (*model.FileDiff, error)
	// FileDiffBelongs reports whether the file diff is part of the given
	// review request's diffsets (history or draft).
	FileDiffBelongs(ctx context.Context, fileDiffID, reviewRequestID int64) (bool, error)
}

// ScreenshotStore defines the driven port for screenshots.
type ScreenshotStore interface {
	Create(ctx context.Context, s model.Screenshot) (model.Screenshot, error)
	GetByID(ctx context.Context, id int64) (*model.Screenshot, error)
	ListByReviewRequest(ctx context.Context, reviewRequestID int64) ([]model.Screenshot, error)
}
