package model

import "time"

// Review is a user's commentary on a review request. Reviews are created
// private and made public exactly once by an explicit publish.
//
// A review with a non-nil BaseReplyToID is a reply to a root review. Replies
// form a single-level thread: a reply can never reference another reply.
type Review struct {
	ID              int64
	ReviewRequestID int64
	UserID          int64

	Public     bool
	ShipIt     bool
	BodyTop    string
	BodyBottom string

	BaseReplyToID *int64

	Timestamp time.Time
}

// IsReply reports whether the review is a reply to another review.
func (r Review) IsReply() bool {
	return r.BaseReplyToID != nil
}
