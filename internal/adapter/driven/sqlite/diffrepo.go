package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.DiffStore = (*DiffRepo)(nil)

// DiffRepo is the SQLite implementation of the DiffStore port interface.
type DiffRepo struct {
	db *DB
}

// NewDiffRepo creates a new DiffRepo backed by the given DB.
func NewDiffRepo(db *DB) *DiffRepo {
	return &DiffRepo{db: db}
}

// CreateDiffSet inserts a diffset with the next monotonic revision for the
// review request, plus its file diffs, in one transaction. The diffset
// starts outside the history (draft side) until a publish promotes it.
func (r *DiffRepo) CreateDiffSet(ctx context.Context, reviewRequestID int64, name string, files []model.FileDiff) (model.DiffSet, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.DiffSet{}, fmt.Errorf("begin create diffset: %w", err)
	}
	defer tx.Rollback()

	var revision int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision), 0) + 1 FROM diffsets WHERE review_request_id = ?`,
		reviewRequestID).Scan(&revision)
	if err != nil {
		return model.DiffSet{}, fmt.Errorf("next diff revision: %w", err)
	}

	ds := model.DiffSet{
		ReviewRequestID: reviewRequestID,
		Revision:        revision,
		Name:            name,
		CreatedAt:       time.Now().UTC(),
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO diffsets (review_request_id, revision, name, in_history, created_at)
		 VALUES (?, ?, ?, 0, ?)`,
		ds.ReviewRequestID, ds.Revision, ds.Name, ds.CreatedAt)
	if err != nil {
		return model.DiffSet{}, fmt.Errorf("insert diffset: %w", err)
	}

	ds.ID, err = res.LastInsertId()
	if err != nil {
		return model.DiffSet{}, fmt.Errorf("diffset insert id: %w", err)
	}

	for _, f := range files {
		fres, err := tx.ExecContext(ctx,
			`INSERT INTO filediffs (diffset_id, source_file, dest_file, source_revision, dest_detail, diff)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ds.ID, f.SourceFile, f.DestFile, f.SourceRevision, f.DestDetail, f.Diff)
		if err != nil {
			return model.DiffSet{}, fmt.Errorf("insert filediff %q: %w", f.DestFile, err)
		}

		f.ID, err = fres.LastInsertId()
		if err != nil {
			return model.DiffSet{}, fmt.Errorf("filediff insert id: %w", err)
		}
		f.DiffSetID = ds.ID
		ds.Files = append(ds.Files, f)
	}

	if err := tx.Commit(); err != nil {
		return model.DiffSet{}, fmt.Errorf("commit create diffset: %w", err)
	}

	return ds, nil
}

// GetByRevision retrieves a diffset (with files) by review request and revision.
func (r *DiffRepo) GetByRevision(ctx context.Context, reviewRequestID int64, revision int) (*model.DiffSet, error) {
	ds, err := scanDiffSet(r.db.Reader.QueryRowContext(ctx,
		`SELECT id, review_request_id, revision, name, in_history, created_at
		 FROM diffsets WHERE review_request_id = ? AND revision = ?`,
		reviewRequestID, revision))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get diffset r%d: %w", revision, err)
	}

	files, err := r.filesFor(ctx, ds.ID)
	if err != nil {
		return nil, err
	}
	ds.Files = files

	return ds, nil
}

// ListByReviewRequest returns the request's diffsets ordered by revision.
// With historyOnly set, draft-side diffsets are excluded.
func (r *DiffRepo) ListByReviewRequest(ctx context.Context, reviewRequestID int64, historyOnly bool) ([]model.DiffSet, error) {
	query := `SELECT id, review_request_id, revision, name, in_history, created_at
		FROM diffsets WHERE review_request_id = ?`
	if historyOnly {
		query += ` AND in_history = 1`
	}
	query += ` ORDER BY revision`

	rows, err := r.db.Reader.QueryContext(ctx, query, reviewRequestID)
	if err != nil {
		return nil, fmt.Errorf("query diffsets: %w", err)
	}
	defer rows.Close()

	var sets []model.DiffSet
	for rows.Next() {
		ds, err := scanDiffSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diffset: %w", err)
		}
		sets = append(sets, *ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diffsets: %w", err)
	}

	return sets, nil
}

// GetFileDiff retrieves a single file diff by id.
func (r *DiffRepo) GetFileDiff(ctx context.Context, id int64) (*model.FileDiff, error) {
	var f model.FileDiff

	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT id, diffset_id, source_file, dest_file, source_revision, dest_detail, diff
		 FROM filediffs WHERE id = ?`, id).
		Scan(&f.ID, &f.DiffSetID, &f.SourceFile, &f.DestFile,
			&f.SourceRevision, &f.DestDetail, &f.Diff)
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get filediff %d: %w", id, err)
	}

	return &f, nil
}

// FileDiffBelongs reports whether the file diff is part of the review
// request's diffsets.
func (r *DiffRepo) FileDiffBelongs(ctx context.Context, fileDiffID, reviewRequestID int64) (bool, error) {
	var one int
	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT 1 FROM filediffs f
		 JOIN diffsets d ON d.id = f.diffset_id
		 WHERE f.id = ? AND d.review_request_id = ?`,
		fileDiffID, reviewRequestID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check filediff ownership: %w", err)
	}

	return true, nil
}

func (r *DiffRepo) filesFor(ctx context.Context, diffsetID int64) ([]model.FileDiff, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, diffset_id, source_file, dest_file, source_revision, dest_detail, diff
		 FROM filediffs WHERE diffset_id = ? ORDER BY id`, diffsetID)
	if err != nil {
		return nil, fmt.Errorf("query filediffs: %w", err)
	}
	defer rows.Close()

	var files []model.FileDiff
	for rows.Next() {
		var f model.FileDiff
		err := rows.Scan(&f.ID, &f.DiffSetID, &f.SourceFile, &f.DestFile,
			&f.SourceRevision, &f.DestDetail, &f.Diff)
		if err != nil {
			return nil, fmt.Errorf("scan filediff: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filediffs: %w", err)
	}

	return files, nil
}

func scanDiffSet(s scanner) (*model.DiffSet, error) {
	var ds model.DiffSet
	var inHistory int
	var createdAt string

	err := s.Scan(&ds.ID, &ds.ReviewRequestID, &ds.Revision, &ds.Name, &inHistory, &createdAt)
	if err != nil {
		return nil, err
	}

	ds.InHistory = inHistory != 0

	ds.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &ds, nil
}
