package model

// Group is a named collection of users that review requests can target.
// InviteOnly groups restrict visibility of review requests targeted at them
// to group members, the submitter, and superusers.
type Group struct {
	ID          int64
	LocalSiteID *int64 // nil = default scope.
	Name        string
	DisplayName string
	InviteOnly  bool
}
