package model

import "time"

// LocalSite is a partition boundary isolating a subset of review requests,
// groups, repositories, and users. Entities with a nil LocalSiteID belong to
// the default (unpartitioned) scope.
type LocalSite struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
