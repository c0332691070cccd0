package model

import "time"

// DiffSet is an immutable uploaded diff revision. Revisions are numbered
// monotonically per review request starting at 1. A diffset uploaded against
// a draft stays out of the request's history (InHistory false) until the
// draft is published.
type DiffSet struct {
	ID              int64
	ReviewRequestID int64
	Revision        int
	Name            string
	InHistory       bool
	CreatedAt       time.Time

	// Files are loaded with the diffset on single-item retrieval.
	Files []FileDiff
}

// FileDiff is the per-file portion of a diffset.
type FileDiff struct {
	ID             int64
	DiffSetID      int64
	SourceFile     string
	DestFile       string
	SourceRevision string
	DestDetail     string
	Diff           string // Unified diff hunks for this file.
}
