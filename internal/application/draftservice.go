package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// Draft field names accepted by UpdateFields. Anything outside this set is
// rejected with an invalid-field error carrying the offending name.
const (
	FieldSummary           = "summary"
	FieldDescription       = "description"
	FieldTestingDone       = "testing_done"
	FieldBranch            = "branch"
	FieldBugsClosed        = "bugs_closed"
	FieldChangeDescription = "changedescription"
	FieldTargetGroups      = "target_groups"
	FieldTargetPeople      = "target_people"
)

// DraftService implements the draft lifecycle for review requests: open,
// field updates, publish, and discard. Publish is the only operation that
// makes draft edits visible; it dispatches a notification after the
// persistence transaction commits.
type DraftService struct {
	drafts   driven.DraftStore
	requests driven.ReviewRequestStore
	users    driven.UserStore
	groups   driven.GroupStore
	perms    *Permissions
	resolver *RecipientResolver
	notifier driven.Notifier

	// sendReviewMail gates notification dispatch; recipient computation
	// happens either way so logs stay informative.
	sendReviewMail bool
}

// NewDraftService creates a DraftService with the required dependencies.
func NewDraftService(
	drafts driven.DraftStore,
	requests driven.ReviewRequestStore,
	users driven.UserStore,
	groups driven.GroupStore,
	perms *Permissions,
	resolver *RecipientResolver,
	notifier driven.Notifier,
	sendReviewMail bool,
) *DraftService {
	return &DraftService{
		drafts:         drafts,
		requests:       requests,
		users:          users,
		groups:         groups,
		perms:          perms,
		resolver:       resolver,
		notifier:       notifier,
		sendReviewMail: sendReviewMail,
	}
}

// OpenDraft returns the review request's draft, creating one seeded from
// the published state if none is open. Opening twice without an
// intervening publish or discard returns the same draft.
func (s *DraftService) OpenDraft(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequestDraft, error) {
	rr, err := s.modifiableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	existing, err := s.drafts.Get(ctx, rr.ID)
	if err == nil {
		return existing, nil
	}
	if !fault.IsNotFound(err) {
		return nil, err
	}

	created, err := s.drafts.Create(ctx, model.SeedDraft(*rr))
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// GetDraft returns the open draft, or not-found when none exists. Only the
// request owner (or a superuser) sees drafts.
func (s *DraftService) GetDraft(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequestDraft, error) {
	rr, err := s.modifiableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	return s.drafts.Get(ctx, rr.ID)
}

// UpdateFields applies named field values to the draft, opening it first if
// needed. The field set is closed; an unknown name or an unresolvable
// target value fails the whole update with nothing persisted, and the
// error carries every offending field.
func (s *DraftService) UpdateFields(ctx context.Context, actor *model.User, siteID *int64, localID int64, fields map[string]string) (*model.ReviewRequestDraft, error) {
	rr, err := s.modifiableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	draft, err := s.OpenDraft(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	var fieldErrs fault.FieldErrors
	for name, value := range fields {
		if ferr := s.applyField(ctx, rr, draft, name, value); ferr != nil {
			fieldErrs = append(fieldErrs, *ferr)
		}
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if err := s.drafts.Update(ctx, *draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func (s *DraftService) applyField(ctx context.Context, rr *model.ReviewRequest, draft *model.ReviewRequestDraft, name, value string) *fault.FieldError {
	switch name {
	case FieldSummary:
		draft.Summary = value
	case FieldDescription:
		draft.Description = value
	case FieldTestingDone:
		draft.TestingDone = value
	case FieldBranch:
		draft.Branch = value
	case FieldChangeDescription:
		draft.ChangeDescription = value
	case FieldBugsClosed:
		draft.BugsClosed = splitList(value)
	case FieldTargetPeople:
		ids, bad := s.resolveUsernames(ctx, splitList(value))
		if bad != "" {
			return &fault.FieldError{Field: name, Reason: fmt.Sprintf("user %q does not exist", bad)}
		}
		draft.TargetPeopleIDs = ids
	case FieldTargetGroups:
		ids, bad := s.resolveGroupNames(ctx, rr.LocalSiteID, splitList(value))
		if bad != "" {
			return &fault.FieldError{Field: name, Reason: fmt.Sprintf("group %q does not exist", bad)}
		}
		draft.TargetGroupIDs = ids
	default:
		return &fault.FieldError{Field: name, Reason: "unknown field"}
	}

	return nil
}

// Publish merges the draft into the review request atomically, making it
// public on first publish, and notifies the recipient set afterwards.
func (s *DraftService) Publish(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequest, error) {
	rr, err := s.modifiableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	draft, err := s.drafts.Get(ctx, rr.ID)
	if fault.IsNotFound(err) {
		return nil, fault.InvalidState("no open draft to publish")
	}
	if err != nil {
		return nil, err
	}

	firstPublish := !rr.Public
	if firstPublish {
		// Prerequisites are checked before any mutation.
		if rr.RepositoryID == nil {
			return nil, fault.Validation("repository", "a repository is required before publishing")
		}
		if len(draft.TargetPeopleIDs) == 0 && len(draft.TargetGroupIDs) == 0 {
			return nil, fault.Validation("target", "at least one target person or group is required")
		}
	}

	if err := s.drafts.Publish(ctx, *draft, firstPublish); err != nil {
		if fault.IsNotFound(err) {
			// A concurrent publish or discard consumed the draft first.
			return nil, fault.InvalidState("draft was already published or discarded")
		}
		return nil, err
	}

	published, err := s.requests.GetByID(ctx, rr.ID)
	if err != nil {
		return nil, err
	}

	s.notifyPublished(ctx, published, firstPublish)

	return published, nil
}

// Discard deletes the draft, leaving the review request untouched.
func (s *DraftService) Discard(ctx context.Context, actor *model.User, siteID *int64, localID int64) error {
	rr, err := s.modifiableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return err
	}

	draft, err := s.drafts.Get(ctx, rr.ID)
	if err != nil {
		return err
	}

	return s.drafts.Discard(ctx, draft.ID)
}

// notifyPublished computes the recipient set and hands it to the notifier.
// Dispatch failures are logged, never surfaced: the publish has committed.
func (s *DraftService) notifyPublished(ctx context.Context, rr *model.ReviewRequest, firstPublish bool) {
	recipients, err := s.resolver.ForReviewRequestPublish(ctx, rr)
	if err != nil {
		slog.ErrorContext(ctx, "recipient computation failed", "review_request_id", rr.ID, "error", err)
		return
	}

	if !s.sendReviewMail {
		return
	}

	event := model.EventReviewRequestUpdated
	if firstPublish {
		event = model.EventReviewRequestPublished
	}

	err = s.notifier.Notify(ctx, model.Notification{
		Event:           event,
		ReviewRequestID: rr.ID,
		Summary:         rr.Summary,
		Recipients:      recipients,
	})
	if err != nil {
		slog.ErrorContext(ctx, "notification dispatch failed", "review_request_id", rr.ID, "error", err)
	}
}

// modifiableRequest resolves the request and checks draft-level access:
// visible to the actor and owned by them (or superuser).
func (s *DraftService) modifiableRequest(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequest, error) {
	if actor == nil {
		return nil, fault.ErrNotLoggedIn
	}

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
	if !s.perms.CanModifyReviewRequest(actor, rr) {
		return nil, fault.ErrPermissionDenied
	}

	return rr, nil
}

// resolveUsernames maps usernames to user ids, reporting the first unknown
// name. Order is preserved.
func (s *DraftService) resolveUsernames(ctx context.Context, names []string) ([]int64, string) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		u, err := s.users.GetByUsername(ctx, name)
		if err != nil {
			return nil, name
		}
		ids = append(ids, u.ID)
	}
	return ids, ""
}

// resolveGroupNames maps group names to group ids within the site scope.
func (s *DraftService) resolveGroupNames(ctx context.Context, siteID *int64, names []string) ([]int64, string) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		g, err := s.groups.GetByName(ctx, siteID, name)
		if err != nil {
			return nil, name
		}
		ids = append(ids, g.ID)
	}
	return ids, ""
}

// splitList parses a comma-separated value list, trimming whitespace and
// dropping empties.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
