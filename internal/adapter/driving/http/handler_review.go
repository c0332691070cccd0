package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/efisher/reviewhub/internal/application"
)

// CreateOrUpdateReview edits the caller's pending review on a review
// request, creating it if none exists. public=true publishes in the same
// call.
func (h *Handler) CreateOrUpdateReview(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	var req ReviewRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewSvc.CreateOrUpdate(r.Context(), actor, siteID, id, application.ReviewInput{
		ShipIt:        req.ShipIt,
		BodyTop:       req.BodyTop,
		BodyBottom:    req.BodyBottom,
		BaseReplyToID: req.BaseReplyToID,
		Public:        req.Public,
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(*review))
}

// ListReviews returns the published root reviews on a review request.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviewSvc.List(r.Context(), actor, siteID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]ReviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		resp = append(resp, toReviewResponse(rev))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetReview returns a single review. Pending reviews are visible only to
// their author.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	review, err := h.reviewSvc.Get(r.Context(), actor, siteID, id, rid)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(*review))
}

// PublishReview makes a pending review public and immutable.
func (h *Handler) PublishReview(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	review, err := h.reviewSvc.Publish(r.Context(), actor, siteID, id, rid)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(*review))
}

// DeleteReview discards a pending review.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	if err := h.reviewSvc.Delete(r.Context(), actor, siteID, id, rid); err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListReplies returns the published replies to a root review.
func (h *Handler) ListReplies(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	replies, err := h.reviewSvc.ListReplies(r.Context(), actor, siteID, id, rid)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]ReviewResponse, 0, len(replies))
	for _, rev := range replies {
		resp = append(resp, toReviewResponse(rev))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddDiffComment anchors a comment to a line range of a file diff on the
// caller's pending review.
func (h *Handler) AddDiffComment(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	var req DiffCommentBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.reviewSvc.AddDiffComment(r.Context(), actor, siteID, id, rid, application.DiffCommentInput{
		FileDiffID:      req.FileDiffID,
		InterFileDiffID: req.InterFileDiffID,
		FirstLine:       req.FirstLine,
		NumLines:        req.NumLines,
		Text:            req.Text,
		IssueOpened:     req.IssueOpened,
		ReplyToID:       req.ReplyToID,
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDiffCommentResponse(comment))
}

// ListDiffComments returns the diff comments on a review.
func (h *Handler) ListDiffComments(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	comments, err := h.reviewSvc.ListDiffComments(r.Context(), actor, siteID, id, rid)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]DiffCommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toDiffCommentResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddScreenshotComment anchors a comment to a region of a screenshot on
// the caller's pending review.
func (h *Handler) AddScreenshotComment(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	var req ScreenshotCommentBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.reviewSvc.AddScreenshotComment(r.Context(), actor, siteID, id, rid, application.ScreenshotCommentInput{
		ScreenshotID: req.ScreenshotID,
		X:            req.X,
		Y:            req.Y,
		W:            req.W,
		H:            req.H,
		Text:         req.Text,
		IssueOpened:  req.IssueOpened,
		ReplyToID:    req.ReplyToID,
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toScreenshotCommentResponse(comment))
}

// ListScreenshotComments returns the screenshot comments on a review.
func (h *Handler) ListScreenshotComments(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}
	rid, ok := reviewID(w, r)
	if !ok {
		return
	}

	comments, err := h.reviewSvc.ListScreenshotComments(r.Context(), actor, siteID, id, rid)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]ScreenshotCommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toScreenshotCommentResponse(c))
	}

	writeJSON(w, http.StatusOK, resp)
}
