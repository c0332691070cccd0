package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.SiteStore = (*SiteRepo)(nil)

// SiteRepo is the SQLite implementation of the SiteStore port interface.
type SiteRepo struct {
	db *DB
}

// NewSiteRepo creates a new SiteRepo backed by the given DB.
func NewSiteRepo(db *DB) *SiteRepo {
	return &SiteRepo{db: db}
}

// Create inserts a local site and returns it with the assigned ID.
func (r *SiteRepo) Create(ctx context.Context, site model.LocalSite) (model.LocalSite, error) {
	res, err := r.db.Writer.ExecContext(ctx,
		`INSERT INTO local_sites (name, created_at) VALUES (?, ?)`,
		site.Name, site.CreatedAt.UTC())
	if err != nil {
		return model.LocalSite{}, fmt.Errorf("insert local site %q: %w", site.Name, err)
	}

	site.ID, err = res.LastInsertId()
	if err != nil {
		return model.LocalSite{}, fmt.Errorf("local site insert id: %w", err)
	}

	return site, nil
}

// GetByName retrieves a local site by name. Returns fault.ErrNotFound if no
// such site exists.
func (r *SiteRepo) GetByName(ctx context.Context, name string) (*model.LocalSite, error) {
	var site model.LocalSite
	var createdAt string

	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM local_sites WHERE name = ?`, name).
		Scan(&site.ID, &site.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get local site %q: %w", name, err)
	}

	site.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &site, nil
}

// ListAll returns all local sites ordered by name.
func (r *SiteRepo) ListAll(ctx context.Context) ([]model.LocalSite, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, name, created_at FROM local_sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query local sites: %w", err)
	}
	defer rows.Close()

	var sites []model.LocalSite
	for rows.Next() {
		var site model.LocalSite
		var createdAt string
		if err := rows.Scan(&site.ID, &site.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan local site: %w", err)
		}
		site.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate local sites: %w", err)
	}

	return sites, nil
}

// AddMember adds a user to the site. Adding an existing member is a no-op.
func (r *SiteRepo) AddMember(ctx context.Context, siteID, userID int64) error {
	_, err := r.db.Writer.ExecContext(ctx,
		`INSERT OR IGNORE INTO local_site_users (local_site_id, user_id) VALUES (?, ?)`,
		siteID, userID)
	if err != nil {
		return fmt.Errorf("add site member: %w", err)
	}

	return nil
}

// RemoveMember removes a user from the site.
func (r *SiteRepo) RemoveMember(ctx context.Context, siteID, userID int64) error {
	_, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM local_site_users WHERE local_site_id = ? AND user_id = ?`,
		siteID, userID)
	if err != nil {
		return fmt.Errorf("remove site member: %w", err)
	}

	return nil
}

// IsMember reports whether the user belongs to the site.
func (r *SiteRepo) IsMember(ctx context.Context, siteID, userID int64) (bool, error) {
	var one int
	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT 1 FROM local_site_users WHERE local_site_id = ? AND user_id = ?`,
		siteID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check site membership: %w", err)
	}

	return true, nil
}
