package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// CreateReviewRequestInput carries the caller-supplied parts of a new
// review request. SubmitAs, when non-empty, files the request on behalf of
// another user and requires the submit-as grant.
type CreateReviewRequestInput struct {
	RepositoryID *int64
	SubmitAs     string
}

// RequestService implements the review request operations: create, lookup
// by display id, visible listing, and status changes. All lookups are
// scoped to a site context resolved by the caller.
type RequestService struct {
	requests     driven.ReviewRequestStore
	users        driven.UserStore
	repositories driven.RepositoryStore
	watches      driven.WatchStore
	perms        *Permissions
}

// NewRequestService creates a RequestService with the required dependencies.
func NewRequestService(
	requests driven.ReviewRequestStore,
	users driven.UserStore,
	repositories driven.RepositoryStore,
	watches driven.WatchStore,
	perms *Permissions,
) *RequestService {
	return &RequestService{
		requests:     requests,
		users:        users,
		repositories: repositories,
		watches:      watches,
		perms:        perms,
	}
}

// Create files a new review request in the given site scope. The request
// starts pending and non-public; only a draft publish makes it visible.
func (s *RequestService) Create(ctx context.Context, actor *model.User, siteID *int64, in CreateReviewRequestInput) (model.ReviewRequest, error) {
	if actor == nil {
		return model.ReviewRequest{}, fault.ErrNotLoggedIn
	}

	submitter := *actor
	if in.SubmitAs != "" && in.SubmitAs != actor.Username {
		if !actor.CanSubmitAs && !actor.IsSuperuser {
			return model.ReviewRequest{}, fault.ErrPermissionDenied
		}
		u, err := s.users.GetByUsername(ctx, in.SubmitAs)
		if fault.IsNotFound(err) {
			return model.ReviewRequest{}, fault.InvalidField("submit_as", fmt.Sprintf("user %q does not exist", in.SubmitAs))
		}
		if err != nil {
			return model.ReviewRequest{}, err
		}
		submitter = *u
	}

	if in.RepositoryID != nil {
		repo, err := s.repositories.GetByID(ctx, *in.RepositoryID)
		if fault.IsNotFound(err) {
			return model.ReviewRequest{}, fault.InvalidField("repository", "repository does not exist")
		}
		if err != nil {
			return model.ReviewRequest{}, err
		}
		if scopeKey(repo.LocalSiteID) != scopeKey(siteID) {
			// Cross-site repositories look nonexistent.
			return model.ReviewRequest{}, fault.InvalidField("repository", "repository does not exist")
		}
	}

	now := time.Now().UTC()
	rr, err := s.requests.Create(ctx, model.ReviewRequest{
		LocalSiteID:  siteID,
		SubmitterID:  submitter.ID,
		RepositoryID: in.RepositoryID,
		BugsClosed:   []string{},
		Status:       model.StatusPending,
		TimeAdded:    now,
		LastUpdated:  now,
	})
	if err != nil {
		return model.ReviewRequest{}, err
	}

	slog.InfoContext(ctx, "review request created",
		"id", rr.ID, "local_id", rr.LocalID, "submitter", submitter.Username)

	return rr, nil
}

// Get retrieves a review request by display id within the site scope and
// enforces visibility. A display id under the wrong site reports not-found;
// an existing but non-visible request reports permission-denied.
func (s *RequestService) Get(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequest, error) {
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

// ListVisible returns the review requests in the site scope the actor may
// see, most recently updated first.
func (s *RequestService) ListVisible(ctx context.Context, actor *model.User, siteID *int64) ([]model.ReviewRequest, error) {
	all, err := s.requests.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	return s.perms.VisibleReviewRequests(ctx, actor, all)
}

// Close moves a pending review request to submitted or discarded.
func (s *RequestService) Close(ctx context.Context, actor *model.User, siteID *int64, localID int64, status model.ReviewRequestStatus) error {
	if status != model.StatusSubmitted && status != model.StatusDiscarded {
		return fault.InvalidField("status", fmt.Sprintf("%q is not a close status", status))
	}

	rr, err := s.Get(ctx, actor, siteID, localID)
	if err != nil {
		return err
	}
	if !s.perms.CanModifyReviewRequest(actor, rr) {
		return fault.ErrPermissionDenied
	}

	return s.requests.SetStatus(ctx, rr.ID, status)
}

// Reopen returns a closed review request to pending.
func (s *RequestService) Reopen(ctx context.Context, actor *model.User, siteID *int64, localID int64) error {
	rr, err := s.Get(ctx, actor, siteID, localID)
	if err != nil {
		return err
	}
	if !s.perms.CanModifyReviewRequest(actor, rr) {
		return fault.ErrPermissionDenied
	}
	if rr.Status == model.StatusPending {
		return fault.InvalidState("review request is not closed")
	}

	return s.requests.SetStatus(ctx, rr.ID, model.StatusPending)
}

// Delete removes a review request entirely. Requires the explicit delete
// grant in addition to ownership.
func (s *RequestService) Delete(ctx context.Context, actor *model.User, siteID *int64, localID int64) error {
	rr, err := s.Get(ctx, actor, siteID, localID)
	if err != nil {
		return err
	}
	if !s.perms.CanDeleteReviewRequest(actor, rr) {
		return fault.ErrPermissionDenied
	}

	slog.InfoContext(ctx, "review request deleted", "id", rr.ID, "local_id", rr.LocalID)

	return s.requests.Delete(ctx, rr.ID)
}

// Watch adds the review request to the actor's watched list. The request
// must be visible to the actor; watching twice is a no-op.
func (s *RequestService) Watch(ctx context.Context, actor *model.User, siteID *int64, localID int64) error {
	if actor == nil {
		return fault.ErrNotLoggedIn
	}

	rr, err := s.Get(ctx, actor, siteID, localID)
	if err != nil {
		return err
	}

	return s.watches.Watch(ctx, actor.ID, rr.ID)
}

// Unwatch removes the review request from the actor's watched list.
// Reports not-found when the request is not being watched.
func (s *RequestService) Unwatch(ctx context.Context, actor *model.User, siteID *int64, localID int64) error {
	if actor == nil {
		return fault.ErrNotLoggedIn
	}

	rr, err := s.Get(ctx, actor, siteID, localID)
	if err != nil {
		return err
	}

	return s.watches.Unwatch(ctx, actor.ID, rr.ID)
}

// ListWatched returns the actor's watched review requests in the site
// scope, oldest watch first. Watches pointing at requests the actor can no
// longer see, or in other scopes, are skipped rather than surfaced.
func (s *RequestService) ListWatched(ctx context.Context, actor *model.User, siteID *int64) ([]model.ReviewRequest, error) {
	if actor == nil {
		return nil, fault.ErrNotLoggedIn
	}

	ids, err := s.watches.ListWatchedIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	watched := make([]model.ReviewRequest, 0, len(ids))
	for _, id := range ids {
		rr, err := s.requests.GetByID(ctx, id)
		if fault.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if scopeKey(rr.LocalSiteID) != scopeKey(siteID) {
			continue
		}

		ok, err := s.perms.CanViewReviewRequest(ctx, actor, rr)
		if err != nil {
			return nil, err
		}
		if ok {
			watched = append(watched, *rr)
		}
	}

	return watched, nil
}

// scopeKey maps an optional site id to a comparable scope value.
func scopeKey(siteID *int64) int64 {
	if siteID == nil {
		return 0
	}
	return *siteID
}
