package model

import "time"

// ReviewRequest is the central entity: a request for review of a change.
//
// ID is globally unique; LocalID is the display id shown in URLs and is a
// per-site sequence, so the same LocalID can exist once in every local site
// (and once in the default scope).
type ReviewRequest struct {
	ID          int64
	LocalID     int64
	LocalSiteID *int64
	SubmitterID int64
	RepositoryID *int64

	Summary     string
	Description string
	TestingDone string
	Branch      string
	BugsClosed  []string

	Status ReviewRequestStatus
	Public bool

	// Reviewer targets. Loaded alongside the request by the store.
	TargetPeopleIDs []int64
	TargetGroupIDs  []int64

	TimeAdded   time.Time
	LastUpdated time.Time
}

// IsTargetPerson reports whether userID is directly targeted by the request.
func (rr ReviewRequest) IsTargetPerson(userID int64) bool {
	for _, id := range rr.TargetPeopleIDs {
		if id == userID {
			return true
		}
	}
	return false
}
