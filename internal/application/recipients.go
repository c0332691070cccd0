package application

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// RecipientResolver computes the recipient set for publish notifications.
// The result is insertion-ordered and duplicate-free, with opted-out users
// removed; delivery is the Notifier adapter's concern.
type RecipientResolver struct {
	users  driven.UserStore
	groups driven.GroupStore
}

// NewRecipientResolver creates a RecipientResolver with the required stores.
func NewRecipientResolver(users driven.UserStore, groups driven.GroupStore) *RecipientResolver {
	return &RecipientResolver{users: users, groups: groups}
}

// ForReviewRequestPublish computes recipients for a review request publish:
// the submitter first (for confirmation), then target people, then the
// expanded members of each target group.
func (r *RecipientResolver) ForReviewRequestPublish(ctx context.Context, rr *model.ReviewRequest) ([]model.User, error) {
	ids := newIDSet()
	ids.add(rr.SubmitterID)
	ids.addAll(rr.TargetPeopleIDs)

	for _, groupID := range rr.TargetGroupIDs {
		members, err := r.groups.MemberIDs(ctx, groupID)
		if err != nil {
			return nil, err
		}
		ids.addAll(members)
	}

	return r.resolve(ctx, ids.ordered)
}

// ForReviewPublish computes recipients for a review or reply publish: the
// request submitter, then prior public reviewers in first-review order,
// then (for replies) the author of the review being replied to. The
// publishing actor is not excluded.
func (r *RecipientResolver) ForReviewPublish(ctx context.Context, rr *model.ReviewRequest, priorReviewerIDs []int64, replyToAuthorID *int64) ([]model.User, error) {
	ids := newIDSet()
	ids.add(rr.SubmitterID)
	ids.addAll(priorReviewerIDs)
	if replyToAuthorID != nil {
		ids.add(*replyToAuthorID)
	}

	return r.resolve(ctx, ids.ordered)
}

// resolve loads users in order and drops those with notifications disabled.
func (r *RecipientResolver) resolve(ctx context.Context, ids []int64) ([]model.User, error) {
	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	recipients := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.NotifyEnabled {
			recipients = append(recipients, u)
		}
	}

	return recipients, nil
}

// idSet tracks ids in insertion order without duplicates.
type idSet struct {
	seen    map[int64]struct{}
	ordered []int64
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[int64]struct{})}
}

func (s *idSet) add(id int64) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ordered = append(s.ordered, id)
}

func (s *idSet) addAll(ids []int64) {
	for _, id := range ids {
		s.add(id)
	}
}
