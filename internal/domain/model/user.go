package model

import "time"

// User is an authenticated actor: a reviewer, submitter, or administrator.
type User struct {
	ID          int64
	Username    string
	Email       string
	APIToken    string // Opaque bearer token for the HTTP API.
	IsSuperuser bool

	// Explicit permission grants beyond ownership.
	CanDeleteReviewRequest bool
	CanSubmitAs            bool

	// NotifyEnabled is false when the user has opted out of review mail.
	NotifyEnabled bool

	CreatedAt time.Time
}
