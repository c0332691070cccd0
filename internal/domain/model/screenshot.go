package model

// Screenshot is an image attached to a review request. DraftCaption holds a
// pending caption edit that replaces Caption when the draft is published.
type Screenshot struct {
	ID              int64
	ReviewRequestID int64
	Caption         string
	DraftCaption    string
	Path            string
}
