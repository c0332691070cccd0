package model

import "time"

// ReviewRequestDraft holds pending edits to a review request that are not
// yet visible to anyone but the submitter. At most one draft exists per
// review request; it is created on first edit, seeded from the published
// field values, and removed by either publish or discard.
type ReviewRequestDraft struct {
	ID              int64
	ReviewRequestID int64

	Summary           string
	Description       string
	TestingDone       string
	Branch            string
	BugsClosed        []string
	ChangeDescription string

	TargetPeopleIDs []int64
	TargetGroupIDs  []int64

	// DiffSetID points at a diff revision uploaded against this draft.
	// It enters the request's diff history when the draft is published.
	DiffSetID *int64

	LastUpdated time.Time
}

// SeedDraft creates a draft initialized from the current published state of rr.
func SeedDraft(rr ReviewRequest) ReviewRequestDraft {
	return ReviewRequestDraft{
		ReviewRequestID: rr.ID,
		Summary:         rr.Summary,
		Description:     rr.Description,
		TestingDone:     rr.TestingDone,
		Branch:          rr.Branch,
		BugsClosed:      append([]string(nil), rr.BugsClosed...),
		TargetPeopleIDs: append([]int64(nil), rr.TargetPeopleIDs...),
		TargetGroupIDs:  append([]int64(nil), rr.TargetGroupIDs...),
	}
}
