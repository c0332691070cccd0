package application

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// Permissions decides, for an actor and an entity, whether a read or a
// mutating operation is allowed. It depends only on port interfaces; no
// process-wide settings are consulted.
type Permissions struct {
	sites  driven.SiteStore
	groups driven.GroupStore
}

// NewPermissions creates a Permissions evaluator with the required stores.
func NewPermissions(sites driven.SiteStore, groups driven.GroupStore) *Permissions {
	return &Permissions{sites: sites, groups: groups}
}

// CheckSiteAccess verifies the actor may operate inside the site scope.
// The default scope (nil) is open to everyone. A failed check reports
// fault.ErrNotFound so cross-site probing cannot confirm existence.
func (p *Permissions) CheckSiteAccess(ctx context.Context, actor *model.User, siteID *int64) error {
	if siteID == nil {
		return nil
	}
	if actor != nil && actor.IsSuperuser {
		return nil
	}
	if actor == nil {
		return fault.ErrNotFound
	}

	member, err := p.sites.IsMember(ctx, *siteID, actor.ID)
	if err != nil {
		return err
	}
	if !member {
		return fault.ErrNotFound
	}

	return nil
}

// CanViewReviewRequest evaluates the visibility rule set for one review
// request. actor may be nil for anonymous reads.
//
// A non-public request is visible only to its submitter, superusers, and
// directly targeted people. A public request is visible to anyone with site
// access unless every target group excludes the actor: a non-invite-only
// target group admits everyone, an invite-only one admits members only.
func (p *Permissions) CanViewReviewRequest(ctx context.Context, actor *model.User, rr *model.ReviewRequest) (bool, error) {
	if actor != nil {
		if actor.IsSuperuser || rr.SubmitterID == actor.ID {
			return true, nil
		}
	}

	if !rr.Public {
		return actor != nil && rr.IsTargetPerson(actor.ID), nil
	}

	if err := p.CheckSiteAccess(ctx, actor, rr.LocalSiteID); err != nil {
		if fault.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if actor != nil && rr.IsTargetPerson(actor.ID) {
		return true, nil
	}

	if len(rr.TargetGroupIDs) == 0 {
		return true, nil
	}

	groups, err := p.groups.GetByIDs(ctx, rr.TargetGroupIDs)
	if err != nil {
		return false, err
	}

	// Access through ANY target group suffices.
	for _, g := range groups {
		if !g.InviteOnly {
			return true, nil
		}
		if actor == nil {
			continue
		}
		member, err := p.groups.IsMember(ctx, g.ID, actor.ID)
		if err != nil {
			return false, err
		}
		if member {
			return true, nil
		}
	}

	return false, nil
}

// CanModifyReviewRequest reports whether the actor may edit the request's
// draft, publish it, or change its status.
func (p *Permissions) CanModifyReviewRequest(actor *model.User, rr *model.ReviewRequest) bool {
	if actor == nil {
		return false
	}
	return actor.IsSuperuser || rr.SubmitterID == actor.ID
}

// CanDeleteReviewRequest requires the explicit delete grant on top of
// ownership; superusers bypass both.
func (p *Permissions) CanDeleteReviewRequest(actor *model.User, rr *model.ReviewRequest) bool {
	if actor == nil {
		return false
	}
	if actor.IsSuperuser {
		return true
	}
	return rr.SubmitterID == actor.ID && actor.CanDeleteReviewRequest
}

// CanModifyReview reports whether the actor may edit, publish, or delete
// the review.
func (p *Permissions) CanModifyReview(actor *model.User, review *model.Review) bool {
	if actor == nil {
		return false
	}
	return actor.IsSuperuser || review.UserID == actor.ID
}

// VisibleReviewRequests filters the site's review requests down to those
// the actor may see, in one pass over the scoped candidate list.
func (p *Permissions) VisibleReviewRequests(ctx context.Context, actor *model.User, requests []model.ReviewRequest) ([]model.ReviewRequest, error) {
	visible := make([]model.ReviewRequest, 0, len(requests))
	for i := range requests {
		ok, err := p.CanViewReviewRequest(ctx, actor, &requests[i])
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, requests[i])
		}
	}

	return visible, nil
}
