package model

import "time"

// DiffComment is a comment anchored to a line range of a file diff. It may
// reference a single diff revision, or an (original, interdiff) pair when
// InterFileDiffID is set. A comment on a reply review references the root
// comment it responds to via ReplyToID.
type DiffComment struct {
	ID              int64
	ReviewID        int64
	FileDiffID      int64
	InterFileDiffID *int64

	FirstLine int
	NumLines  int
	Text      string

	// IssueOpened marks the comment as raising an issue the submitter is
	// expected to resolve.
	IssueOpened bool

	ReplyToID *int64

	Timestamp time.Time
}

// ScreenshotComment is a comment anchored to a rectangular region of a
// screenshot attached to a review request.
type ScreenshotComment struct {
	ID           int64
	ReviewID     int64
	ScreenshotID int64

	X, Y, W, H int
	Text       string

	IssueOpened bool

	ReplyToID *int64

	Timestamp time.Time
}
