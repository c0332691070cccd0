package httphandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// UploadDiff attaches a new diff revision to the caller's draft.
func (h *Handler) UploadDiff(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	var req UploadDiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	files := make([]model.FileDiff, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, model.FileDiff{
			SourceFile:     f.SourceFile,
			DestFile:       f.DestFile,
			SourceRevision: f.SourceRevision,
			DestDetail:     f.DestDetail,
			Diff:           f.Diff,
		})
	}

	ds, err := h.diffSvc.UploadDiff(r.Context(), actor, siteID, id, req.Name, files)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDiffSetResponse(ds))
}

// ListDiffs returns the diff revisions visible to the caller. The pending
// draft revision is included only for users who can modify the request.
func (h *Handler) ListDiffs(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	diffs, err := h.diffSvc.ListDiffs(r.Context(), actor, siteID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]DiffSetResponse, 0, len(diffs))
	for _, ds := range diffs {
		resp = append(resp, toDiffSetResponse(ds))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetDiff returns a single diff revision with its files.
func (h *Handler) GetDiff(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	revision, err := strconv.Atoi(r.PathValue("revision"))
	if err != nil || revision < 1 {
		writeError(w, http.StatusBadRequest, "invalid diff revision")
		return
	}

	ds, err := h.diffSvc.GetDiff(r.Context(), actor, siteID, id, revision)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDiffSetResponse(*ds))
}

// GetFileDiffHunk serves the unified diff text of a single file. With
// ?format=html the hunk is rendered with line-level markup instead.
func (h *Handler) GetFileDiffHunk(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	fid, err := strconv.ParseInt(r.PathValue("fid"), 10, 64)
	if err != nil || fid < 1 {
		writeError(w, http.StatusBadRequest, "invalid filediff id")
		return
	}

	fd, err := h.diffSvc.GetFileDiff(r.Context(), actor, siteID, id, fid)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(renderDiffHunk(fd.Diff)))
		return
	}

	w.Header().Set("Content-Type", "text/x-patch; charset=utf-8")
	_, _ = w.Write([]byte(fd.Diff))
}

// AddScreenshot attaches a screenshot to a review request.
func (h *Handler) AddScreenshot(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	var req AddScreenshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "screenshot path is required")
		return
	}

	shot, err := h.diffSvc.AddScreenshot(r.Context(), actor, siteID, id, req.Caption, req.Path)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toScreenshotResponse(shot))
}

// ListScreenshots returns the screenshots attached to a review request.
func (h *Handler) ListScreenshots(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := localID(w, r)
	if !ok {
		return
	}

	shots, err := h.diffSvc.ListScreenshots(r.Context(), actor, siteID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]ScreenshotResponse, 0, len(shots))
	for _, s := range shots {
		resp = append(resp, toScreenshotResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}
