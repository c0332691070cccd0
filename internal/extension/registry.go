package extension

import (
	"fmt"
	"sync"
)

// Registry holds hook contributors per point. Registration is an explicit
// call and enumeration returns contributors in registration order, so the
// order extensions load in is the order their contributions render in.
type Registry struct {
	mu     sync.RWMutex
	points map[Point][]Contributor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{points: make(map[Point][]Contributor)}
}

// Register adds a contributor to a point. The contributor must implement
// the point's capability interface, and its HookID must not already be
// registered at that point.
func (r *Registry) Register(point Point, c Contributor) error {
	if err := checkCapability(point, c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.points[point] {
		if existing.HookID() == c.HookID() {
			return fmt.Errorf("hook %q already registered at point %q", c.HookID(), point)
		}
	}

	r.points[point] = append(r.points[point], c)
	return nil
}

// Unregister removes the contributor with the given id from a point. It
// reports whether anything was removed.
func (r *Registry) Unregister(point Point, hookID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks := r.points[point]
	for i, c := range hooks {
		if c.HookID() == hookID {
			r.points[point] = append(hooks[:i:i], hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Enumerate returns the contributors registered at a point in registration
// order. The returned slice is a copy.
func (r *Registry) Enumerate(point Point) []Contributor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hooks := r.points[point]
	out := make([]Contributor, len(hooks))
	copy(out, hooks)
	return out
}

// KnownPoint reports whether point is one the registry serves.
func KnownPoint(point Point) bool {
	switch point {
	case PointNavigationBar, PointDashboard, PointReviewRequestAction, PointReviewRequestDetail:
		return true
	}
	return false
}

func checkCapability(point Point, c Contributor) error {
	var ok bool
	switch point {
	case PointNavigationBar:
		_, ok = c.(NavigationBarHook)
	case PointDashboard:
		_, ok = c.(DashboardHook)
	case PointReviewRequestAction:
		_, ok = c.(ReviewRequestActionHook)
	case PointReviewRequestDetail:
		_, ok = c.(ReviewRequestDetailHook)
	default:
		return fmt.Errorf("unknown hook point %q", point)
	}

	if !ok {
		return fmt.Errorf("hook %q does not implement the %q capability", c.HookID(), point)
	}
	return nil
}
