package httphandler

import (
	"time"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// ReviewRequestResponse is the JSON representation of a review request.
// Rich-text fields carry a sanitized rendered HTML variant alongside the
// raw markdown source.
type ReviewRequestResponse struct {
	ID              int64    `json:"id"`
	SubmitterID     int64    `json:"submitter_id"`
	RepositoryID    *int64   `json:"repository_id"`
	Summary         string   `json:"summary"`
	Description     string   `json:"description"`
	DescriptionHTML string   `json:"description_html"`
	TestingDone     string   `json:"testing_done"`
	TestingDoneHTML string   `json:"testing_done_html"`
	Branch          string   `json:"branch"`
	BugsClosed      []string `json:"bugs_closed"`
	Status          string   `json:"status"`
	Public          bool     `json:"public"`
	TargetPeople    []int64  `json:"target_people"`
	TargetGroups    []int64  `json:"target_groups"`
	TimeAdded       string   `json:"time_added"`
	LastUpdated     string   `json:"last_updated"`
}

// DraftResponse is the JSON representation of a review request draft.
type DraftResponse struct {
	ID                    int64    `json:"id"`
	ReviewRequestID       int64    `json:"review_request_id"`
	Summary               string   `json:"summary"`
	Description           string   `json:"description"`
	DescriptionHTML       string   `json:"description_html"`
	TestingDone           string   `json:"testing_done"`
	TestingDoneHTML       string   `json:"testing_done_html"`
	Branch                string   `json:"branch"`
	BugsClosed            []string `json:"bugs_closed"`
	ChangeDescription     string   `json:"changedescription"`
	ChangeDescriptionHTML string   `json:"changedescription_html"`
	TargetPeople          []int64  `json:"target_people"`
	TargetGroups          []int64  `json:"target_groups"`
	DiffSetID             *int64   `json:"diffset_id"`
	LastUpdated           string   `json:"last_updated"`
}

// ReviewResponse is the JSON representation of a review or reply.
type ReviewResponse struct {
	ID              int64  `json:"id"`
	ReviewRequestID int64  `json:"review_request_id"`
	UserID          int64  `json:"user_id"`
	Public          bool   `json:"public"`
	ShipIt          bool   `json:"ship_it"`
	BodyTop         string `json:"body_top"`
	BodyTopHTML     string `json:"body_top_html"`
	BodyBottom      string `json:"body_bottom"`
	BodyBottomHTML  string `json:"body_bottom_html"`
	BaseReplyToID   *int64 `json:"base_reply_to_id"`
	Timestamp       string `json:"timestamp"`
}

// DiffSetResponse is the JSON representation of an uploaded diff revision.
type DiffSetResponse struct {
	ID              int64              `json:"id"`
	ReviewRequestID int64              `json:"review_request_id"`
	Revision        int                `json:"revision"`
	Name            string             `json:"name"`
	InHistory       bool               `json:"in_history"`
	CreatedAt       string             `json:"created_at"`
	Files           []FileDiffResponse `json:"files,omitempty"`
}

// FileDiffResponse is the JSON representation of the per-file portion of a
// diffset. The hunk text is served by the dedicated filediff endpoint.
type FileDiffResponse struct {
	ID             int64  `json:"id"`
	DiffSetID      int64  `json:"diffset_id"`
	SourceFile     string `json:"source_file"`
	DestFile       string `json:"dest_file"`
	SourceRevision string `json:"source_revision"`
	DestDetail     string `json:"dest_detail"`
}

// ScreenshotResponse is the JSON representation of a screenshot.
type ScreenshotResponse struct {
	ID              int64  `json:"id"`
	ReviewRequestID int64  `json:"review_request_id"`
	Caption         string `json:"caption"`
	Path            string `json:"path"`
}

// DiffCommentResponse is the JSON representation of a diff comment.
type DiffCommentResponse struct {
	ID              int64  `json:"id"`
	ReviewID        int64  `json:"review_id"`
	FileDiffID      int64  `json:"filediff_id"`
	InterFileDiffID *int64 `json:"interfilediff_id"`
	FirstLine       int    `json:"first_line"`
	NumLines        int    `json:"num_lines"`
	Text            string `json:"text"`
	TextHTML        string `json:"text_html"`
	IssueOpened     bool   `json:"issue_opened"`
	ReplyToID       *int64 `json:"reply_to_id"`
	Timestamp       string `json:"timestamp"`
}

// ScreenshotCommentResponse is the JSON representation of a screenshot comment.
type ScreenshotCommentResponse struct {
	ID           int64  `json:"id"`
	ReviewID     int64  `json:"review_id"`
	ScreenshotID int64  `json:"screenshot_id"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	W            int    `json:"w"`
	H            int    `json:"h"`
	Text         string `json:"text"`
	TextHTML     string `json:"text_html"`
	IssueOpened  bool   `json:"issue_opened"`
	ReplyToID    *int64 `json:"reply_to_id"`
	Timestamp    string `json:"timestamp"`
}

// UserResponse is the JSON representation of a user. API tokens and
// permission grants are never exposed.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GroupResponse is the JSON representation of a review group.
type GroupResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	InviteOnly  bool   `json:"invite_only"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CreateReviewRequestRequest is the JSON body for creating a review request.
type CreateReviewRequestRequest struct {
	RepositoryID *int64 `json:"repository_id"`
	SubmitAs     string `json:"submit_as"`
}

// CloseReviewRequestRequest is the JSON body for closing a review request.
type CloseReviewRequestRequest struct {
	Status string `json:"status"`
}

// UpdateDraftRequest is the JSON body for editing draft fields. Keys are
// field names; unknown keys are rejected without persisting anything.
type UpdateDraftRequest struct {
	Fields map[string]string `json:"fields"`
}

// ReviewRequestBody is the JSON body for creating or updating a review.
// Omitted fields leave the current value untouched.
type ReviewRequestBody struct {
	ShipIt        *bool   `json:"ship_it"`
	BodyTop       *string `json:"body_top"`
	BodyBottom    *string `json:"body_bottom"`
	BaseReplyToID *int64  `json:"base_reply_to_id"`
	Public        bool    `json:"public"`
}

// DiffCommentBody is the JSON body for adding a diff comment.
type DiffCommentBody struct {
	FileDiffID      int64  `json:"filediff_id"`
	InterFileDiffID *int64 `json:"interfilediff_id"`
	FirstLine       int    `json:"first_line"`
	NumLines        int    `json:"num_lines"`
	Text            string `json:"text"`
	IssueOpened     bool   `json:"issue_opened"`
	ReplyToID       *int64 `json:"reply_to_id"`
}

// ScreenshotCommentBody is the JSON body for adding a screenshot comment.
type ScreenshotCommentBody struct {
	ScreenshotID int64  `json:"screenshot_id"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	W            int    `json:"w"`
	H            int    `json:"h"`
	Text         string `json:"text"`
	IssueOpened  bool   `json:"issue_opened"`
	ReplyToID    *int64 `json:"reply_to_id"`
}

// UploadDiffRequest is the JSON body for uploading a diff revision.
type UploadDiffRequest struct {
	Name  string           `json:"name"`
	Files []FileDiffUpload `json:"files"`
}

// FileDiffUpload is a single file entry of an uploaded diff.
type FileDiffUpload struct {
	SourceFile     string `json:"source_file"`
	DestFile       string `json:"dest_file"`
	SourceRevision string `json:"source_revision"`
	DestDetail     string `json:"dest_detail"`
	Diff           string `json:"diff"`
}

// AddScreenshotRequest is the JSON body for attaching a screenshot.
type AddScreenshotRequest struct {
	Caption string `json:"caption"`
	Path    string `json:"path"`
}

// ExtensionContributionResponse is one hook contribution at an extension point.
type ExtensionContributionResponse struct {
	HookID       string `json:"hook_id"`
	Contribution any    `json:"contribution"`
}

func toReviewRequestResponse(rr model.ReviewRequest) ReviewRequestResponse {
	return ReviewRequestResponse{
		ID:              rr.LocalID,
		SubmitterID:     rr.SubmitterID,
		RepositoryID:    rr.RepositoryID,
		Summary:         rr.Summary,
		Description:     rr.Description,
		DescriptionHTML: renderMarkdown(rr.Description),
		TestingDone:     rr.TestingDone,
		TestingDoneHTML: renderMarkdown(rr.TestingDone),
		Branch:          rr.Branch,
		BugsClosed:      emptyIfNilStrings(rr.BugsClosed),
		Status:          string(rr.Status),
		Public:          rr.Public,
		TargetPeople:    emptyIfNil(rr.TargetPeopleIDs),
		TargetGroups:    emptyIfNil(rr.TargetGroupIDs),
		TimeAdded:       rr.TimeAdded.UTC().Format(time.RFC3339),
		LastUpdated:     rr.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func toDraftResponse(d model.ReviewRequestDraft) DraftResponse {
	return DraftResponse{
		ID:                    d.ID,
		ReviewRequestID:       d.ReviewRequestID,
		Summary:               d.Summary,
		Description:           d.Description,
		DescriptionHTML:       renderMarkdown(d.Description),
		TestingDone:           d.TestingDone,
		TestingDoneHTML:       renderMarkdown(d.TestingDone),
		Branch:                d.Branch,
		BugsClosed:            emptyIfNilStrings(d.BugsClosed),
		ChangeDescription:     d.ChangeDescription,
		ChangeDescriptionHTML: renderMarkdown(d.ChangeDescription),
		TargetPeople:          emptyIfNil(d.TargetPeopleIDs),
		TargetGroups:          emptyIfNil(d.TargetGroupIDs),
		DiffSetID:             d.DiffSetID,
		LastUpdated:           d.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func toReviewResponse(rev model.Review) ReviewResponse {
	return ReviewResponse{
		ID:              rev.ID,
		ReviewRequestID: rev.ReviewRequestID,
		UserID:          rev.UserID,
		Public:          rev.Public,
		ShipIt:          rev.ShipIt,
		BodyTop:         rev.BodyTop,
		BodyTopHTML:     renderMarkdown(rev.BodyTop),
		BodyBottom:      rev.BodyBottom,
		BodyBottomHTML:  renderMarkdown(rev.BodyBottom),
		BaseReplyToID:   rev.BaseReplyToID,
		Timestamp:       rev.Timestamp.UTC().Format(time.RFC3339),
	}
}

func toDiffSetResponse(ds model.DiffSet) DiffSetResponse {
	files := make([]FileDiffResponse, 0, len(ds.Files))
	for _, f := range ds.Files {
		files = append(files, toFileDiffResponse(f))
	}

	return DiffSetResponse{
		ID:              ds.ID,
		ReviewRequestID: ds.ReviewRequestID,
		Revision:        ds.Revision,
		Name:            ds.Name,
		InHistory:       ds.InHistory,
		CreatedAt:       ds.CreatedAt.UTC().Format(time.RFC3339),
		Files:           files,
	}
}

func toFileDiffResponse(f model.FileDiff) FileDiffResponse {
	return FileDiffResponse{
		ID:             f.ID,
		DiffSetID:      f.DiffSetID,
		SourceFile:     f.SourceFile,
		DestFile:       f.DestFile,
		SourceRevision: f.SourceRevision,
		DestDetail:     f.DestDetail,
	}
}

func toScreenshotResponse(s model.Screenshot) ScreenshotResponse {
	return ScreenshotResponse{
		ID:              s.ID,
		ReviewRequestID: s.ReviewRequestID,
		Caption:         s.Caption,
		Path:            s.Path,
	}
}

func toDiffCommentResponse(c model.DiffComment) DiffCommentResponse {
	return DiffCommentResponse{
		ID:              c.ID,
		ReviewID:        c.ReviewID,
		FileDiffID:      c.FileDiffID,
		InterFileDiffID: c.InterFileDiffID,
		FirstLine:       c.FirstLine,
		NumLines:        c.NumLines,
		Text:            c.Text,
		TextHTML:        renderMarkdown(c.Text),
		IssueOpened:     c.IssueOpened,
		ReplyToID:       c.ReplyToID,
		Timestamp:       c.Timestamp.UTC().Format(time.RFC3339),
	}
}

func toScreenshotCommentResponse(c model.ScreenshotComment) ScreenshotCommentResponse {
	return ScreenshotCommentResponse{
		ID:           c.ID,
		ReviewID:     c.ReviewID,
		ScreenshotID: c.ScreenshotID,
		X:            c.X,
		Y:            c.Y,
		W:            c.W,
		H:            c.H,
		Text:         c.Text,
		TextHTML:     renderMarkdown(c.Text),
		IssueOpened:  c.IssueOpened,
		ReplyToID:    c.ReplyToID,
		Timestamp:    c.Timestamp.UTC().Format(time.RFC3339),
	}
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

func toGroupResponse(g model.Group) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		DisplayName: g.DisplayName,
		InviteOnly:  g.InviteOnly,
	}
}

func emptyIfNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func emptyIfNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
