package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/efisher/reviewhub/internal/application"
	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
	"github.com/efisher/reviewhub/internal/extension"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	requestSvc *application.RequestService
	draftSvc   *application.DraftService
	reviewSvc  *application.ReviewService
	diffSvc    *application.DiffService
	users      driven.UserStore
	sites      driven.SiteStore
	groups     driven.GroupStore
	registry   *extension.Registry
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	requestSvc *application.RequestService,
	draftSvc *application.DraftService,
	reviewSvc *application.ReviewService,
	diffSvc *application.DiffService,
	users driven.UserStore,
	sites driven.SiteStore,
	groups driven.GroupStore,
	registry *extension.Registry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		requestSvc: requestSvc,
		draftSvc:   draftSvc,
		reviewSvc:  reviewSvc,
		diffSvc:    diffSvc,
		users:      users,
		sites:      sites,
		groups:     groups,
		registry:   registry,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with auth, logging, and recovery middleware. Every resource route is
// served twice: under /api/v1 for the default scope and under
// /api/v1/s/{site} for a local site scope.
func NewServeMux(h *Handler, requireLogin bool, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	for _, prefix := range []string{"/api/v1", "/api/v1/s/{site}"} {
		mux.HandleFunc("POST "+prefix+"/review-requests", h.CreateReviewRequest)
		mux.HandleFunc("GET "+prefix+"/review-requests", h.ListReviewRequests)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}", h.GetReviewRequest)
		mux.HandleFunc("DELETE "+prefix+"/review-requests/{id}", h.DeleteReviewRequest)
		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/close", h.CloseReviewRequest)
		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/reopen", h.ReopenReviewRequest)

		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/watch", h.WatchReviewRequest)
		mux.HandleFunc("DELETE "+prefix+"/review-requests/{id}/watch", h.UnwatchReviewRequest)
		mux.HandleFunc("GET "+prefix+"/watched/review-requests", h.ListWatchedReviewRequests)

		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/draft", h.GetDraft)
		mux.HandleFunc("PUT "+prefix+"/review-requests/{id}/draft", h.UpdateDraft)
		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/draft/publish", h.PublishDraft)
		mux.HandleFunc("DELETE "+prefix+"/review-requests/{id}/draft", h.DiscardDraft)

		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/reviews", h.CreateOrUpdateReview)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/reviews", h.ListReviews)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/reviews/{rid}", h.GetReview)
		mux.HandleFunc("DELETE "+prefix+"/review-requests/{id}/reviews/{rid}", h.DeleteReview)
		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/reviews/{rid}/publish", h.PublishReview)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/reviews/{rid}/replies", h.ListReplies)

		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/reviews/{rid}/diff-comments", h.AddDiffComment)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/reviews/{rid}/diff-comments", h.ListDiffComments)
		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/reviews/{rid}/screenshot-comments", h.AddScreenshotComment)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/reviews/{rid}/screenshot-comments", h.ListScreenshotComments)

		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/diffs", h.UploadDiff)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/diffs", h.ListDiffs)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/diffs/{revision}", h.GetDiff)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/filediffs/{fid}", h.GetFileDiffHunk)

		mux.HandleFunc("POST "+prefix+"/review-requests/{id}/screenshots", h.AddScreenshot)
		mux.HandleFunc("GET "+prefix+"/review-requests/{id}/screenshots", h.ListScreenshots)

		mux.HandleFunc("GET "+prefix+"/users", h.ListUsers)
		mux.HandleFunc("GET "+prefix+"/groups", h.ListGroups)
	}

	mux.HandleFunc("GET /api/v1/extensions/{point}", h.ListExtensionContributions)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = authMiddleware(h.users, requireLogin, logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// scope resolves the request's tenant and actor. An unknown site name, or a
// site the actor is not a member of, reads as absence. Returns ok=false
// after writing the error response.
func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (*model.User, *int64, bool) {
	actor := actorFrom(r.Context())

	siteName := r.PathValue("site")
	if siteName == "" {
		return actor, nil, true
	}

	site, err := h.sites.GetByName(r.Context(), siteName)
	if err != nil {
		if fault.IsNotFound(err) {
			writeFault(w, fault.ErrNotFound)
			return nil, nil, false
		}
		h.logger.Error("site lookup failed", "site", siteName, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, nil, false
	}

	if actor == nil || !actor.IsSuperuser {
		if actor == nil {
			writeFault(w, fault.ErrNotFound)
			return nil, nil, false
		}
		member, err := h.sites.IsMember(r.Context(), site.ID, actor.ID)
		if err != nil {
			h.logger.Error("site membership check failed", "site", siteName, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return nil, nil, false
		}
		if !member {
			writeFault(w, fault.ErrNotFound)
			return nil, nil, false
		}
	}

	return actor, &site.ID, true
}

// localID parses the {id} path value as a review request display id.
func localID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid review request id")
		return 0, false
	}
	return id, true
}

// reviewID parses the {rid} path value as a review id.
func reviewID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("rid"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid review id")
		return 0, false
	}
	return id, true
}

// respondErr writes a fault response, logging the error first when it has
// no fault classification.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	if isInternal(err) {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeFault(w, err)
}

// ListUsers returns the users visible in the scope: site members under a
// site prefix, every account otherwise. Tokens and grants stay private.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}

	users, err := h.users.ListAll(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		if siteID != nil {
			member, err := h.sites.IsMember(r.Context(), *siteID, u.ID)
			if err != nil {
				h.respondErr(w, r, err)
				return
			}
			if !member {
				continue
			}
		}
		resp = append(resp, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListGroups returns the review groups in the scope. Invite-only groups
// are listed; only their targeted requests are hidden.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := h.scope(w, r)
	if !ok {
		return
	}

	groups, err := h.groups.ListBySite(r.Context(), siteID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	resp := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, toGroupResponse(g))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListExtensionContributions enumerates hook contributions at a point in
// registration order.
func (h *Handler) ListExtensionContributions(w http.ResponseWriter, r *http.Request) {
	point := extension.Point(r.PathValue("point"))
	if !extension.KnownPoint(point) {
		writeError(w, http.StatusNotFound, "unknown extension point")
		return
	}

	actor := actorFrom(r.Context())
	resp := make([]ExtensionContributionResponse, 0)
	for _, c := range h.registry.Enumerate(point) {
		entry := ExtensionContributionResponse{HookID: c.HookID()}

		switch hook := c.(type) {
		case extension.NavigationBarHook:
			entry.Contribution = hook.NavigationEntries(r.Context(), actor)
		case extension.DashboardHook:
			entry.Contribution = hook.DashboardEntries(r.Context(), actor)
		case extension.ReviewRequestActionHook:
			entry.Contribution = hook.ActionInfo()
		case extension.ReviewRequestDetailHook:
			entry.Contribution = map[string]any{
				"field_id": hook.FieldID(),
				"label":    hook.Label(),
				"wide":     hook.Wide(),
			}
		}

		resp = append(resp, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
