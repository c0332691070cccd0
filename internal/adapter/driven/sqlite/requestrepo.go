package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.ReviewRequestStore = (*RequestRepo)(nil)

// RequestRepo is the SQLite implementation of the ReviewRequestStore port.
type RequestRepo struct {
	db *DB
}

// NewRequestRepo creates a new RequestRepo backed by the given DB.
func NewRequestRepo(db *DB) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `id, local_id, local_site_id, submitter_id, repository_id,
	summary, description, testing_done, branch, bugs_closed, status, public,
	time_added, last_updated`

// Create inserts a review request, allocating the per-site display id from
// the scope counter in the same transaction.
func (r *RequestRepo) Create(ctx context.Context, rr model.ReviewRequest) (model.ReviewRequest, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("begin create review request: %w", err)
	}
	defer tx.Rollback()

	localID, err := nextLocalID(ctx, tx, rr.LocalSiteID)
	if err != nil {
		return model.ReviewRequest{}, err
	}
	rr.LocalID = localID

	bugs, err := marshalStrings(rr.BugsClosed)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("marshal bugs_closed: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO review_requests (
			local_id, local_site_id, submitter_id, repository_id,
			summary, description, testing_done, branch, bugs_closed,
			status, public, time_added, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rr.LocalID, nullableID(rr.LocalSiteID), rr.SubmitterID, nullableID(rr.RepositoryID),
		rr.Summary, rr.Description, rr.TestingDone, rr.Branch, bugs,
		string(rr.Status), boolToInt(rr.Public),
		rr.TimeAdded.UTC(), rr.LastUpdated.UTC(),
	)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("insert review request: %w", err)
	}

	rr.ID, err = res.LastInsertId()
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("review request insert id: %w", err)
	}

	if err := replaceTargets(ctx, tx, "review_request_people", "review_request_id", "user_id", rr.ID, rr.TargetPeopleIDs); err != nil {
		return model.ReviewRequest{}, err
	}
	if err := replaceTargets(ctx, tx, "review_request_groups", "review_request_id", "group_id", rr.ID, rr.TargetGroupIDs); err != nil {
		return model.ReviewRequest{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ReviewRequest{}, fmt.Errorf("commit create review request: %w", err)
	}

	return rr, nil
}

// GetByID retrieves a review request by global id, with targets loaded.
// Returns fault.ErrNotFound if absent.
func (r *RequestRepo) GetByID(ctx context.Context, id int64) (*model.ReviewRequest, error) {
	return r.getOne(ctx,
		`SELECT `+requestColumns+` FROM review_requests WHERE id = ?`, id)
}

// GetByLocalID retrieves a review request by its display id within the
// given site scope. A display id under the wrong site reports
// fault.ErrNotFound exactly like true absence.
func (r *RequestRepo) GetByLocalID(ctx context.Context, siteID *int64, localID int64) (*model.ReviewRequest, error) {
	return r.getOne(ctx,
		`SELECT `+requestColumns+` FROM review_requests
		 WHERE COALESCE(local_site_id, 0) = ? AND local_id = ?`,
		scope(siteID), localID)
}

// ListBySite returns every review request in the site scope ordered by last
// update descending, with targets loaded.
func (r *RequestRepo) ListBySite(ctx context.Context, siteID *int64) ([]model.ReviewRequest, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM review_requests
		 WHERE COALESCE(local_site_id, 0) = ? ORDER BY last_updated DESC`,
		scope(siteID))
	if err != nil {
		return nil, fmt.Errorf("query review requests: %w", err)
	}
	defer rows.Close()

	var reqs []model.ReviewRequest
	for rows.Next() {
		rr, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review request: %w", err)
		}
		reqs = append(reqs, *rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review requests: %w", err)
	}

	for i := range reqs {
		if err := r.loadTargets(ctx, &reqs[i]); err != nil {
			return nil, err
		}
	}

	return reqs, nil
}

// SetStatus updates the status of a review request.
func (r *RequestRepo) SetStatus(ctx context.Context, id int64, status model.ReviewRequestStatus) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`UPDATE review_requests SET status = ?, last_updated = datetime('now') WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update review request %d status: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fault.ErrNotFound
	}

	return nil
}

// Delete removes a review request and everything hanging off it.
func (r *RequestRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM review_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review request %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fault.ErrNotFound
	}

	return nil
}

func (r *RequestRepo) getOne(ctx context.Context, query string, args ...any) (*model.ReviewRequest, error) {
	rr, err := scanRequest(r.db.Reader.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review request: %w", err)
	}

	if err := r.loadTargets(ctx, rr); err != nil {
		return nil, err
	}

	return rr, nil
}

func (r *RequestRepo) loadTargets(ctx context.Context, rr *model.ReviewRequest) error {
	people, err := queryIDs(ctx, r.db.Reader,
		`SELECT user_id FROM review_request_people WHERE review_request_id = ? ORDER BY position`, rr.ID)
	if err != nil {
		return fmt.Errorf("load target people: %w", err)
	}
	rr.TargetPeopleIDs = people

	groups, err := queryIDs(ctx, r.db.Reader,
		`SELECT group_id FROM review_request_groups WHERE review_request_id = ? ORDER BY position`, rr.ID)
	if err != nil {
		return fmt.Errorf("load target groups: %w", err)
	}
	rr.TargetGroupIDs = groups

	return nil
}

func scanRequest(s scanner) (*model.ReviewRequest, error) {
	var rr model.ReviewRequest
	var siteID, repoID sql.NullInt64
	var bugs, status string
	var public int
	var timeAdded, lastUpdated string

	err := s.Scan(
		&rr.ID, &rr.LocalID, &siteID, &rr.SubmitterID, &repoID,
		&rr.Summary, &rr.Description, &rr.TestingDone, &rr.Branch, &bugs,
		&status, &public, &timeAdded, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	rr.LocalSiteID = idOrNil(siteID)
	rr.RepositoryID = idOrNil(repoID)
	rr.Status = model.ReviewRequestStatus(status)
	rr.Public = public != 0

	if err := json.Unmarshal([]byte(bugs), &rr.BugsClosed); err != nil {
		return nil, fmt.Errorf("unmarshal bugs_closed: %w", err)
	}

	rr.TimeAdded, err = parseTime(timeAdded)
	if err != nil {
		return nil, fmt.Errorf("parse time_added: %w", err)
	}

	rr.LastUpdated, err = parseTime(lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated: %w", err)
	}

	return &rr, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// nextLocalID reserves the next display id for the site scope.
func nextLocalID(ctx context.Context, tx *sql.Tx, siteID *int64) (int64, error) {
	sc := scope(siteID)

	_, err := tx.ExecContext(ctx,
		`INSERT INTO local_id_counters (scope, next_local_id) VALUES (?, 1)
		 ON CONFLICT(scope) DO UPDATE SET next_local_id = next_local_id + 1`, sc)
	if err != nil {
		return 0, fmt.Errorf("bump local id counter: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT next_local_id FROM local_id_counters WHERE scope = ?`, sc).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("read local id counter: %w", err)
	}

	return id, nil
}

// replaceTargets rewrites a target join table for one owner row, keeping
// insertion order in the position column.
func replaceTargets(ctx context.Context, e execer, table, ownerCol, refCol string, ownerID int64, ids []int64) error {
	_, err := e.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, ownerCol), ownerID)
	if err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	for pos, id := range ids {
		_, err := e.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, %s, position) VALUES (?, ?, ?)`, table, ownerCol, refCol),
			ownerID, id, pos)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	return nil
}

func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
