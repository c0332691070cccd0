package extension

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// Point identifies a location in the product where extensions can
// contribute content.
type Point string

const (
	PointNavigationBar       Point = "navigation_bar"
	PointDashboard           Point = "dashboard"
	PointReviewRequestAction Point = "review_request_action"
	PointReviewRequestDetail Point = "review_request_detail"
)

// Contributor is the base capability every hook implements. HookID must be
// stable and unique within a point; it is the handle used to unregister.
type Contributor interface {
	HookID() string
}

// NavigationEntry is a single link contributed to the navigation bar.
type NavigationEntry struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}

// NavigationBarHook contributes entries to the navigation bar.
type NavigationBarHook interface {
	Contributor
	NavigationEntries(ctx context.Context, user *model.User) []NavigationEntry
}

// DashboardEntry is a sidebar link contributed to the dashboard.
type DashboardEntry struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DashboardHook contributes sidebar entries to the dashboard.
type DashboardHook interface {
	Contributor
	DashboardEntries(ctx context.Context, user *model.User) []DashboardEntry
}

// ActionInfo describes a clickable action on the review request page.
type ActionInfo struct {
	ActionID string `json:"action_id"`
	Label    string `json:"label"`
	URL      string `json:"url"`
}

// ReviewRequestActionHook contributes an action to the review request page.
type ReviewRequestActionHook interface {
	Contributor
	ActionInfo() ActionInfo
}

// ReviewRequestDetailHook contributes a read-only field to the review
// request detail pane. Wide fields span the full pane width.
type ReviewRequestDetailHook interface {
	Contributor
	FieldID() string
	Label() string
	Detail(ctx context.Context, rr *model.ReviewRequest) string
	Wide() bool
}
