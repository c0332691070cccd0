package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableID converts an optional foreign key to a bindable value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// idOrNil converts a scanned NullInt64 back to an optional foreign key.
func idOrNil(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// scope maps an optional local site id to the counter scope key, where 0 is
// the default (unpartitioned) scope.
func scope(siteID *int64) int64 {
	if siteID == nil {
		return 0
	}
	return *siteID
}
