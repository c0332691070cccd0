package driven

import (
	"context"

	"github.com/efisher/reviewhub/internal/domain/model"
)

// Notifier defines the driven port for notification dispatch. The core
// computes the recipient set and hands it off after the publish transaction
// commits; delivery is the adapter's problem and failures are not fatal to
// the publish.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}
