// Package dispatch provides notification dispatcher implementations.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.Notifier = (*LogDispatcher)(nil)

// LogDispatcher records publish notifications to the structured log. It
// stands in where no mail transport is configured; the recipient set it
// receives is already deduplicated and opt-out filtered.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a LogDispatcher writing to the given logger.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Notify logs one line per notification with the recipient usernames.
func (d *LogDispatcher) Notify(ctx context.Context, n model.Notification) error {
	recipients := make([]string, len(n.Recipients))
	for i, u := range n.Recipients {
		recipients[i] = u.Username
	}

	attrs := []any{
		"event", string(n.Event),
		"review_request_id", n.ReviewRequestID,
		"summary", n.Summary,
		"recipients", recipients,
	}
	if n.ReviewID != nil {
		attrs = append(attrs, "review_id", *n.ReviewID)
	}

	d.logger.InfoContext(ctx, "notification dispatched", attrs...)

	return nil
}
