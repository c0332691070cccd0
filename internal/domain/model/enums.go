package model

// ReviewRequestStatus represents the lifecycle state of a review request.
type ReviewRequestStatus string

const (
	StatusPending   ReviewRequestStatus = "pending"
	StatusSubmitted ReviewRequestStatus = "submitted"
	StatusDiscarded ReviewRequestStatus = "discarded"
)

// ValidStatus reports whether s is a recognized review request status.
func ValidStatus(s ReviewRequestStatus) bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusDiscarded:
		return true
	}
	return false
}

// NotificationEvent identifies what kind of publish triggered a notification.
type NotificationEvent string

const (
	EventReviewRequestPublished NotificationEvent = "review_request_published"
	EventReviewRequestUpdated   NotificationEvent = "review_request_updated"
	EventReviewPublished        NotificationEvent = "review_published"
	EventReplyPublished         NotificationEvent = "reply_published"
)
