package application

import (
	"context"
	"log/slog"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

// ReviewInput carries the caller-supplied review fields. Nil pointers leave
// the current value untouched. Public true requests a publish after the
// field update.
type ReviewInput struct {
	ShipIt        *bool
	BodyTop       *string
	BodyBottom    *string
	BaseReplyToID *int64
	Public        bool
}

// DiffCommentInput carries a new diff comment's anchor and text.
type DiffCommentInput struct {
	FileDiffID      int64
	InterFileDiffID *int64
	FirstLine       int
	NumLines        int
	Text            string
	IssueOpened     bool
	ReplyToID       *int64
}

// ScreenshotCommentInput carries a new screenshot comment's region and text.
type ScreenshotCommentInput struct {
	ScreenshotID int64
	X, Y, W, H   int
	Text         string
	IssueOpened  bool
	ReplyToID    *int64
}

// ReviewService implements reviews, replies, and their comments. Reviews
// follow the same private-until-published model as request drafts: each
// (request, author, reply target) tuple has at most one pending review,
// edited in place until an explicit publish makes it immutable and visible.
type ReviewService struct {
	reviews     driven.ReviewStore
	requests    driven.ReviewRequestStore
	comments    driven.CommentStore
	diffs       driven.DiffStore
	screenshots driven.ScreenshotStore
	perms       *Permissions
	resolver    *RecipientResolver
	notifier    driven.Notifier

	sendReviewMail bool
}

// NewReviewService creates a ReviewService with the required dependencies.
func NewReviewService(
	reviews driven.ReviewStore,
	requests driven.ReviewRequestStore,
	comments driven.CommentStore,
	diffs driven.DiffStore,
	screenshots driven.ScreenshotStore,
	perms *Permissions,
	resolver *RecipientResolver,
	notifier driven.Notifier,
	sendReviewMail bool,
) *ReviewService {
	return &ReviewService{
		reviews:        reviews,
		requests:       requests,
		comments:       comments,
		diffs:          diffs,
		screenshots:    screenshots,
		perms:          perms,
		resolver:       resolver,
		notifier:       notifier,
		sendReviewMail: sendReviewMail,
	}
}

// CreateOrUpdate edits the actor's pending review on the request, creating
// it if none is open. A non-nil BaseReplyToID makes it a reply; the target
// must be a public root review on the same request. When in.Public is set
// the review is published after the field update.
func (s *ReviewService) CreateOrUpdate(ctx context.Context, actor *model.User, siteID *int64, localID int64, in ReviewInput) (*model.Review, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	if in.BaseReplyToID != nil {
		if err := s.checkReplyTarget(ctx, rr, *in.BaseReplyToID); err != nil {
			return nil, err
		}
	}

	review, _, err := s.reviews.GetOrCreatePending(ctx, rr.ID, actor.ID, in.BaseReplyToID)
	if err != nil {
		return nil, err
	}

	if in.ShipIt != nil {
		review.ShipIt = *in.ShipIt
	}
	if in.BodyTop != nil {
		review.BodyTop = *in.BodyTop
	}
	if in.BodyBottom != nil {
		review.BodyBottom = *in.BodyBottom
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	if in.Public {
		return s.publish(ctx, rr, review)
	}

	return &review, nil
}

// Publish makes the actor's review public. Publishing is one-way: an
// already-public review reports invalid state.
func (s *ReviewService) Publish(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) (*model.Review, error) {
	rr, review, err := s.ownReview(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return nil, err
	}

	return s.publish(ctx, rr, *review)
}

// Delete removes the actor's pending review together with its comments.
// Published reviews are permanent.
func (s *ReviewService) Delete(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) error {
	_, review, err := s.ownReview(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return err
	}
	if review.Public {
		return fault.InvalidState("published reviews cannot be deleted")
	}

	return s.reviews.Delete(ctx, review.ID)
}

// Get retrieves a single review. Pending reviews are visible to their
// author (and superusers) only.
func (s *ReviewService) Get(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) (*model.Review, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ReviewRequestID != rr.ID {
		return nil, fault.ErrNotFound
	}
	if !review.Public && !s.perms.CanModifyReview(actor, review) {
		return nil, fault.ErrNotFound
	}

	return review, nil
}

// List returns the request's public root reviews in publish order.
func (s *ReviewService) List(ctx context.Context, actor *model.User, siteID *int64, localID int64) ([]model.Review, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, err
	}

	return s.reviews.ListPublicByReviewRequest(ctx, rr.ID)
}

// ListReplies returns a review's public replies in publish order.
func (s *ReviewService) ListReplies(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) ([]model.Review, error) {
	review, err := s.Get(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return nil, err
	}

	return s.reviews.ListPublicReplies(ctx, review.ID)
}

// AddDiffComment attaches a diff comment to the actor's pending review.
// The referenced file diff (and interdiff, if any) must belong to the
// request's diff history.
func (s *ReviewService) AddDiffComment(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64, in DiffCommentInput) (model.DiffComment, error) {
	rr, review, err := s.pendingReview(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return model.DiffComment{}, err
	}

	if err := s.checkFileDiff(ctx, rr.ID, "filediff_id", in.FileDiffID); err != nil {
		return model.DiffComment{}, err
	}
	if in.InterFileDiffID != nil {
		if err := s.checkFileDiff(ctx, rr.ID, "interfilediff_id", *in.InterFileDiffID); err != nil {
			return model.DiffComment{}, err
		}
	}
	if in.FirstLine < 1 {
		return model.DiffComment{}, fault.InvalidField("first_line", "must be at least 1")
	}
	if in.NumLines < 1 {
		return model.DiffComment{}, fault.InvalidField("num_lines", "must be at least 1")
	}

	return s.comments.CreateDiffComment(ctx, model.DiffComment{
		ReviewID:        review.ID,
		FileDiffID:      in.FileDiffID,
		InterFileDiffID: in.InterFileDiffID,
		FirstLine:       in.FirstLine,
		NumLines:        in.NumLines,
		Text:            in.Text,
		IssueOpened:     in.IssueOpened,
		ReplyToID:       in.ReplyToID,
	})
}

// AddScreenshotComment attaches a screenshot comment to the actor's
// pending review. The screenshot must belong to the same request.
func (s *ReviewService) AddScreenshotComment(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64, in ScreenshotCommentInput) (model.ScreenshotComment, error) {
	rr, review, err := s.pendingReview(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return model.ScreenshotComment{}, err
	}

	shot, err := s.screenshots.GetByID(ctx, in.ScreenshotID)
	if err != nil || shot.ReviewRequestID != rr.ID {
		return model.ScreenshotComment{}, fault.InvalidField("screenshot_id", "screenshot does not belong to this review request")
	}

	return s.comments.CreateScreenshotComment(ctx, model.ScreenshotComment{
		ReviewID:     review.ID,
		ScreenshotID: in.ScreenshotID,
		X:            in.X,
		Y:            in.Y,
		W:            in.W,
		H:            in.H,
		Text:         in.Text,
		IssueOpened:  in.IssueOpened,
		ReplyToID:    in.ReplyToID,
	})
}

// ListDiffComments returns a review's diff comments. Comment visibility
// follows the owning review's.
func (s *ReviewService) ListDiffComments(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) ([]model.DiffComment, error) {
	review, err := s.Get(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return nil, err
	}

	return s.comments.ListDiffCommentsByReview(ctx, review.ID)
}

// ListScreenshotComments returns a review's screenshot comments.
func (s *ReviewService) ListScreenshotComments(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) ([]model.ScreenshotComment, error) {
	review, err := s.Get(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return nil, err
	}

	return s.comments.ListScreenshotCommentsByReview(ctx, review.ID)
}

func (s *ReviewService) publish(ctx context.Context, rr *model.ReviewRequest, review model.Review) (*model.Review, error) {
	if err := s.reviews.Publish(ctx, review.ID); err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.InvalidState("review is already published")
		}
		return nil, err
	}

	published, err := s.reviews.GetByID(ctx, review.ID)
	if err != nil {
		return nil, err
	}

	s.notifyPublished(ctx, rr, published)

	return published, nil
}

// notifyPublished fans out a review or reply publish. Failures are logged
// and swallowed: the publish has already committed.
func (s *ReviewService) notifyPublished(ctx context.Context, rr *model.ReviewRequest, review *model.Review) {
	priorReviewers, err := s.reviews.PublicReviewerIDs(ctx, rr.ID)
	if err != nil {
		slog.ErrorContext(ctx, "reviewer lookup failed", "review_request_id", rr.ID, "error", err)
		return
	}

	event := model.EventReviewPublished
	var replyToAuthor *int64
	if review.IsReply() {
		event = model.EventReplyPublished
		parent, err := s.reviews.GetByID(ctx, *review.BaseReplyToID)
		if err != nil {
			slog.ErrorContext(ctx, "reply target lookup failed", "review_id", review.ID, "error", err)
			return
		}
		replyToAuthor = &parent.UserID
	}

	recipients, err := s.resolver.ForReviewPublish(ctx, rr, priorReviewers, replyToAuthor)
	if err != nil {
		slog.ErrorContext(ctx, "recipient computation failed", "review_id", review.ID, "error", err)
		return
	}

	if !s.sendReviewMail {
		return
	}

	err = s.notifier.Notify(ctx, model.Notification{
		Event:           event,
		ReviewRequestID: rr.ID,
		ReviewID:        &review.ID,
		Summary:         rr.Summary,
		Recipients:      recipients,
	})
	if err != nil {
		slog.ErrorContext(ctx, "notification dispatch failed", "review_id", review.ID, "error", err)
	}
}

// checkReplyTarget enforces the single-level reply thread: the target must
// be a public root review on the same request.
func (s *ReviewService) checkReplyTarget(ctx context.Context, rr *model.ReviewRequest, targetID int64) error {
	parent, err := s.reviews.GetByID(ctx, targetID)
	if err != nil {
		return fault.InvalidField("base_reply_to", "review does not exist")
	}
	if parent.ReviewRequestID != rr.ID {
		return fault.InvalidField("base_reply_to", "review does not belong to this review request")
	}
	if parent.IsReply() {
		return fault.InvalidState("cannot reply to a reply")
	}
	if !parent.Public {
		return fault.InvalidState("cannot reply to an unpublished review")
	}

	return nil
}

func (s *ReviewService) checkFileDiff(ctx context.Context, reviewRequestID int64, field string, fileDiffID int64) error {
	ok, err := s.diffs.FileDiffBelongs(ctx, fileDiffID, reviewRequestID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.InvalidField(field, "file diff does not belong to this review request")
	}

	return nil
}

// viewableRequest resolves the request and enforces read visibility.
func (s *ReviewService) viewableRequest(ctx context.Context, actor *model.User, siteID *int64, localID int64) (*model.ReviewRequest, error) {
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

	return rr, nil
}

// ownReview resolves a review the actor may mutate.
func (s *ReviewService) ownReview(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) (*model.ReviewRequest, *model.Review, error) {
	rr, err := s.viewableRequest(ctx, actor, siteID, localID)
	if err != nil {
		return nil, nil, err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}
	if review.ReviewRequestID != rr.ID {
		return nil, nil, fault.ErrNotFound
	}
	if !s.perms.CanModifyReview(actor, review) {
		return nil, nil, fault.ErrPermissionDenied
	}

	return rr, review, nil
}

// pendingReview resolves the actor's own still-private review for comment
// attachment.
func (s *ReviewService) pendingReview(ctx context.Context, actor *model.User, siteID *int64, localID, reviewID int64) (*model.ReviewRequest, *model.Review, error) {
	rr, review, err := s.ownReview(ctx, actor, siteID, localID, reviewID)
	if err != nil {
		return nil, nil, err
	}
	if review.Public {
		return nil, nil, fault.InvalidState("published reviews cannot be edited")
	}

	return rr, review, nil
}
