package model

// Notification is the recipient-set computation result handed to the
// notification dispatcher after a publish commits. Recipients are
// insertion-ordered and duplicate-free; delivery mechanics live outside
// the core.
type Notification struct {
	Event           NotificationEvent
	ReviewRequestID int64
	ReviewID        *int64 // Set for review and reply publishes.
	Summary         string
	Recipients      []User
}
