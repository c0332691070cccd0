package model

// Repository is a source code repository that review requests are filed
// against. A review request must be bound to a repository before its first
// publish.
type Repository struct {
	ID          int64
	LocalSiteID *int64
	Name        string
	Path        string
	Tool        string // SCM tool identifier, e.g. "Git" or "Subversion".
}
