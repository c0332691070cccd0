package application

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// DiffService implements diff revision uploads and retrieval, plus
// screenshot attachments. An uploaded diffset binds to the owner's open
// draft and enters the request's history when the draft is published.
type DiffService struct {
	diffs       driven.DiffStore
	screenshots driven.ScreenshotStore
	drafts      driven.DraftStore
	requests    driven.ReviewRequestStore
	perms       *Permissions
}

// NewDiffService creates a DiffService with the required dependencies.
func NewDiffService(
	diffs driven.DiffStore,
	screenshots driven.ScreenshotStore,
	drafts driven.DraftStore,
	requests driven.ReviewRequestStore,
	perms *Permissions,
) *DiffService {
	return &DiffService{
		diffs:       diffs,
		screenshots: screenshots,
		drafts:      drafts,
		requests:    requests,
		perms:       perms,
	}
}

// UploadDiff stores a new diff revision against the request's draft,
// opening the draft if needed. Revisions number monotonically from 1.
func (s *DiffService) UploadDiff(ctx context.Context, actor *model.User, siteID *int64, localID int64, name string, files []model.FileDiff) (model.DiffSet, error) {
	rr, err := s.ownRequest(ctx, actor, siteID, localID)
	if err != nil {
		return model.DiffSet{}, err
	}
	if len(files) == 0 {
		return model.DiffSet{}, fault.InvalidField("files", "a diff must contain at least one file")
	}

	ds, err := s.diffs.CreateDiffSet(ctx, rr.ID, name, files)
	if err != nil {
		return model.DiffSet{}, err
	}

	draft, err := s.drafts.Get(ctx, rr.ID)
	if fault.IsNotFound(err) {
		created, cerr := s.drafts.Create(ctx, model.SeedDraft(*rr))
		if cerr != nil {
			return model.DiffSet{}, cerr
		}
		draft = &created
	} else if err != nil {
		return model.DiffSet{}, err
	}

	draft.DiffSetID = &ds.ID
	if err := s.drafts.Update(ctx, *draft); err != nil {
		return model.DiffSet{}, err
	}

	return ds, nil
}

// ListDiffs returns the request's diff history. The owner also sees the
// draft-side revision not yet published.
func (s *DiffService) ListDiffs(ctx context.Context, actor *model.User, siteID *int64, localID int64) ([]model.DiffSet, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	historyOnly := !s.perms.CanModifyReviewRequest(actor, rr)

	return s.diffs.ListByReviewRequest(ctx, rr.ID, historyOnly)
}

// GetDiff retrieves one diff revision with its files.
func (s *DiffService) GetDiff(ctx context.Context, actor *model.User, siteID *int64, localID int64, revision int) (*model.DiffSet, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	ds, err := s.diffs.GetByRevision(ctx, rr.ID, revision)
	if err != nil {
		return nil, err
	}
	if !ds.InHistory && !s.perms.CanModifyReviewRequest(actor, rr) {
		return nil, fault.ErrNotFound
	}

	return ds, nil
}

// GetFileDiff retrieves one file's hunks from the request's diffsets.
func (s *DiffService) GetFileDiff(ctx context.Context, actor *model.User, siteID *int64, localID, fileDiffID int64) (*model.FileDiff, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	ok, err := s.diffs.FileDiffBelongs(ctx, fileDiffID, rr.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.ErrNotFound
	}

	return s.diffs.GetFileDiff(ctx, fileDiffID)
}

// AddScreenshot attaches a screenshot record to the review request.
func (s *DiffService) AddScreenshot(ctx context.Context, actor *model.User, siteID *int64, localID int64, caption, path string) (model.Screenshot, error) {
	rr, err := s.ownRequest(ctx, actor, siteID, localID)
	if err != nil {
		return model.Screenshot{}, err
	}

	return s.screenshots.Create(ctx, model.Screenshot{
		ReviewRequestID: rr.ID,
		Caption:         caption,
		Path:            path,
	})
}

// ListScreenshots returns the request's screenshots.
func (s *DiffService) ListScreenshots(ctx context.Context, actor *model.User, siteID *int64, localID int64) ([]model.Screenshot, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	return s.screenshots.ListByReviewRequest(ctx, rr.ID)
}

func (s *DiffService) viewableRequest(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequest, error) {
	rr, err := s.requests.GetByLocalID(ctx, siteID, localID)
	if err != nil {
		return nil, err
	}

	ok, err := s.perms.CanViewReviewRequest(ctx, actor, rr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.ErrPermissionDenied
	}

	return rr, nil
}

func (s *DiffService) ownRequest(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequest, error) {
	if actor == nil {
		return nil, fault.ErrNotLoggedIn
	}

	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}
	if !s.perms.CanModifyReviewRequest(actor, rr) {
		return nil, fault.ErrPermissionDenied
	}

	return rr, nil
}
