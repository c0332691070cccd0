package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.RepositoryStore = (*RepositoryRepo)(nil)

// RepositoryRepo is the SQLite implementation of the RepositoryStore port.
type RepositoryRepo struct {
	db *DB
}

// NewRepositoryRepo creates a new RepositoryRepo backed by the given DB.
func NewRepositoryRepo(db *DB) *RepositoryRepo {
	return &RepositoryRepo{db: db}
}

// Create inserts a repository record and returns it with the assigned ID.
func (r *RepositoryRepo) Create(ctx context.Context, repo model.Repository) (model.Repository, error) {
	res, err := r.db.Writer.ExecContext(ctx,
		`INSERT INTO repositories (local_site_id, name, path, tool) VALUES (?, ?, ?, ?)`,
		nullableID(repo.LocalSiteID), repo.Name, repo.Path, repo.Tool)
	if err != nil {
		return model.Repository{}, fmt.Errorf("insert repository %q: %w", repo.Name, err)
	}

	repo.ID, err = res.LastInsertId()
	if err != nil {
		return model.Repository{}, fmt.Errorf("repository insert id: %w", err)
	}

	return repo, nil
}

// GetByID retrieves a repository by id. Returns fault.ErrNotFound if absent.
func (r *RepositoryRepo) GetByID(ctx context.Context, id int64) (*model.Repository, error) {
	var repo model.Repository
	var siteID sql.NullInt64

	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT id, local_site_id, name, path, tool FROM repositories WHERE id = ?`, id).
		Scan(&repo.ID, &siteID, &repo.Name, &repo.Path, &repo.Tool)
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %d: %w", id, err)
	}

	repo.LocalSiteID = idOrNil(siteID)

	return &repo, nil
}

// ListBySite returns all repositories in the given site scope ordered by name.
func (r *RepositoryRepo) ListBySite(ctx context.Context, siteID *int64) ([]model.Repository, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, local_site_id, name, path, tool
		 FROM repositories WHERE COALESCE(local_site_id, 0) = ? ORDER BY name`,
		scope(siteID))
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		var repo model.Repository
		var sid sql.NullInt64
		if err := rows.Scan(&repo.ID, &sid, &repo.Name, &repo.Path, &repo.Tool); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repo.LocalSiteID = idOrNil(sid)
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}
