package driven

import "context"

// WatchStore defines the driven port for a user's watched review requests.
//
// Watch is idempotent; Unwatch reports absence as not-found so callers can
// distinguish "never watched" from a successful removal. ListWatchedIDs
// returns ids in watch order, oldest first.
type WatchStore interface {
	Watch(ctx context.Context, userID, reviewRequestID int64) error
	Unwatch(ctx context.Context, userID, reviewRequestID int64) error
	ListWatchedIDs(ctx context.Context, userID int64) ([]int64, error)
}
