package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/efisher/reviewhub/internal/application"
	"github.com/efisher/reviewhub/internal/domain/model"
)

// CreateReviewRequest creates a new private review request owned by the
// caller (or by submit_as, with the right grant).
func (h *Handler) CreateReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rr, err := h.requestSvc.Create(r.Context(), actor, siteID, application.CreateReviewRequestInput{
		RepositoryID: req.RepositoryID,
		SubmitAs:     req.SubmitAs,
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewRequestResponse(rr))
}

// ListReviewRequests returns the review requests in scope that the caller
// is allowed to see.
func (h *Handler) ListReviewRequests(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}

	requests, err := h.requestSvc.ListVisible(r.Context(), actor, siteID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]ReviewRequestResponse, 0, len(requests))
	for _, rr := range requests {
		resp = append(resp, toReviewRequestResponse(rr))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetReviewRequest returns a single review request by display id.
func (h *Handler) GetReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	rr, err := h.requestSvc.Get(r.Context(), actor, siteID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewRequestResponse(*rr))
}

// CloseReviewRequest closes a review request as submitted or discarded.
func (h *Handler) CloseReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	var req CloseReviewRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.requestSvc.Close(r.Context(), actor, siteID, id, model.ReviewRequestStatus(req.Status))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReopenReviewRequest returns a closed review request to pending.
func (h *Handler) ReopenReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	if err := h.requestSvc.Reopen(r.Context(), actor, siteID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteReviewRequest permanently removes a review request.
func (h *Handler) DeleteReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	if err := h.requestSvc.Delete(r.Context(), actor, siteID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// WatchReviewRequest adds a review request to the caller's watched list.
func (h *Handler) WatchReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	if err := h.requestSvc.Watch(r.Context(), actor, siteID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnwatchReviewRequest removes a review request from the caller's watched
// list.
func (h *Handler) UnwatchReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	if err := h.requestSvc.Unwatch(r.Context(), actor, siteID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListWatchedReviewRequests returns the caller's watched review requests
// in the scope, oldest watch first.
func (h *Handler) ListWatchedReviewRequests(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}

	watched, err := h.requestSvc.ListWatched(r.Context(), actor, siteID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]ReviewRequestResponse, 0, len(watched))
	for _, rr := range watched {
		resp = append(resp, toReviewRequestResponse(rr))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetDraft returns the caller's open draft for a review request, creating
// it from the published state on first access.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	draft, err := h.draftSvc.OpenDraft(r.Context(), actor, siteID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDraftResponse(*draft))
}

// UpdateDraft applies field edits to the draft. Any invalid field rejects
// the whole batch.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	var req UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	draft, err := h.draftSvc.UpdateFields(r.Context(), actor, siteID, id, req.Fields)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDraftResponse(*draft))
}

// PublishDraft atomically applies the draft to the review request, making
// it public on first publish.
func (h *Handler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	rr, err := h.draftSvc.Publish(r.Context(), actor, siteID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReviewRequestResponse(*rr))
}

// DiscardDraft throws away the open draft, leaving the published state as is.
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	if err := h.draftSvc.Discard(r.Context(), actor, siteID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
