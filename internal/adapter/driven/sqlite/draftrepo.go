package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.DraftStore = (*DraftRepo)(nil)

// DraftRepo is the SQLite implementation of the DraftStore port interface.
type DraftRepo struct {
	db *DB
}

// NewDraftRepo creates a new DraftRepo backed by the given DB.
func NewDraftRepo(db *DB) *DraftRepo {
	return &DraftRepo{db: db}
}

const draftColumns = `id, review_request_id, summary, description, testing_done,
	branch, bugs_closed, change_description, diffset_id, last_updated`

// Get retrieves the draft for a review request, with pending targets loaded.
// Returns fault.ErrNotFound when no draft is open.
func (r *DraftRepo) Get(ctx context.Context, reviewRequestID int64) (*model.ReviewRequestDraft, error) {
	d, err := scanDraft(r.db.Reader.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM review_request_drafts WHERE review_request_id = ?`,
		reviewRequestID))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft for request %d: %w", reviewRequestID, err)
	}

	if err := r.loadTargets(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

// Create inserts a draft and its pending target sets.
func (r *DraftRepo) Create(ctx context.Context, d model.ReviewRequestDraft) (model.ReviewRequestDraft, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return model.ReviewRequestDraft{}, fmt.Errorf("begin create draft: %w", err)
	}
	defer tx.Rollback()

	bugs, err := marshalStrings(d.BugsClosed)
	if err != nil {
		return model.ReviewRequestDraft{}, fmt.Errorf("marshal bugs_closed: %w", err)
	}

	d.LastUpdated = time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO review_request_drafts (
			review_request_id, summary, description, testing_done, branch,
			bugs_closed, change_description, diffset_id, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ReviewRequestID, d.Summary, d.Description, d.TestingDone, d.Branch,
		bugs, d.ChangeDescription, nullableID(d.DiffSetID), d.LastUpdated,
	)
	if err != nil {
		return model.ReviewRequestDraft{}, fmt.Errorf("insert draft: %w", err)
	}

	d.ID, err = res.LastInsertId()
	if err != nil {
		return model.ReviewRequestDraft{}, fmt.Errorf("draft insert id: %w", err)
	}

	if err := r.writeTargets(ctx, tx, d); err != nil {
		return model.ReviewRequestDraft{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ReviewRequestDraft{}, fmt.Errorf("commit create draft: %w", err)
	}

	return d, nil
}

// Update rewrites the draft's fields and pending target sets.
func (r *DraftRepo) Update(ctx context.Context, d model.ReviewRequestDraft) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update draft: %w", err)
	}
	defer tx.Rollback()

	bugs, err := marshalStrings(d.BugsClosed)
	if err != nil {
		return fmt.Errorf("marshal bugs_closed: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE review_request_drafts SET
			summary = ?, description = ?, testing_done = ?, branch = ?,
			bugs_closed = ?, change_description = ?, diffset_id = ?,
			last_updated = ?
		WHERE id = ?`,
		d.Summary, d.Description, d.TestingDone, d.Branch,
		bugs, d.ChangeDescription, nullableID(d.DiffSetID),
		time.Now().UTC(), d.ID,
	)
	if err != nil {
		return fmt.Errorf("update draft %d: %w", d.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fault.ErrNotFound
	}

	if err := r.writeTargets(ctx, tx, d); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update draft: %w", err)
	}

	return nil
}

// Publish merges the draft onto its review request in one transaction:
// field copy, public flip on first publish, target replacement, diffset
// promotion into history, and draft deletion. If the draft row is gone a
// concurrent publish or discard already won; nothing is changed and
// fault.ErrNotFound is reported.
func (r *DraftRepo) Publish(ctx context.Context, d model.ReviewRequestDraft, firstPublish bool) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish draft: %w", err)
	}
	defer tx.Rollback()

	// Claim the draft first. Zero rows means we lost the race.
	res, err := tx.ExecContext(ctx,
		`DELETE FROM review_request_drafts WHERE id = ?`, d.ID)
	if err != nil {
		return fmt.Errorf("delete draft %d: %w", d.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fault.ErrNotFound
	}

	bugs, err := marshalStrings(d.BugsClosed)
	if err != nil {
		return fmt.Errorf("marshal bugs_closed: %w", err)
	}

	public := ""
	if firstPublish {
		// public is set-once; later publishes apply fields only.
		public = ", public = 1"
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE review_requests SET
			summary = ?, description = ?, testing_done = ?, branch = ?,
			bugs_closed = ?, last_updated = ?`+public+`
		WHERE id = ?`,
		d.Summary, d.Description, d.TestingDone, d.Branch,
		bugs, time.Now().UTC(), d.ReviewRequestID,
	)
	if err != nil {
		return fmt.Errorf("apply draft to review request %d: %w", d.ReviewRequestID, err)
	}

	if err := replaceTargets(ctx, tx, "review_request_people", "review_request_id", "user_id", d.ReviewRequestID, d.TargetPeopleIDs); err != nil {
		return err
	}
	if err := replaceTargets(ctx, tx, "review_request_groups", "review_request_id", "group_id", d.ReviewRequestID, d.TargetGroupIDs); err != nil {
		return err
	}

	if d.DiffSetID != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE diffsets SET in_history = 1 WHERE id = ?`, *d.DiffSetID)
		if err != nil {
			return fmt.Errorf("promote diffset %d: %w", *d.DiffSetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish draft: %w", err)
	}

	return nil
}

// Discard deletes the draft without touching the base review request.
func (r *DraftRepo) Discard(ctx context.Context, draftID int64) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM review_request_drafts WHERE id = ?`, draftID)
	if err != nil {
		return fmt.Errorf("discard draft %d: %w", draftID, err)
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

func (r *DraftRepo) writeTargets(ctx context.Context, tx *sql.Tx, d model.ReviewRequestDraft) error {
	if err := replaceTargets(ctx, tx, "draft_people", "draft_id", "user_id", d.ID, d.TargetPeopleIDs); err != nil {
		return err
	}
	return replaceTargets(ctx, tx, "draft_groups", "draft_id", "group_id", d.ID, d.TargetGroupIDs)
}

func (r *DraftRepo) loadTargets(ctx context.Context, d *model.ReviewRequestDraft) error {
	people, err := queryIDs(ctx, r.db.Reader,
		`SELECT user_id FROM draft_people WHERE draft_id = ? ORDER BY position`, d.ID)
	if err != nil {
		return fmt.Errorf("load draft people: %w", err)
	}
	d.TargetPeopleIDs = people

	groups, err := queryIDs(ctx, r.db.Reader,
		`SELECT group_id FROM draft_groups WHERE draft_id = ? ORDER BY position`, d.ID)
	if err != nil {
		return fmt.Errorf("load draft groups: %w", err)
	}
	d.TargetGroupIDs = groups

	return nil
}

func scanDraft(s scanner) (*model.ReviewRequestDraft, error) {
	var d model.ReviewRequestDraft
	var bugs string
	var diffsetID sql.NullInt64
	var lastUpdated string

	err := s.Scan(
		&d.ID, &d.ReviewRequestID, &d.Summary, &d.Description, &d.TestingDone,
		&d.Branch, &bugs, &d.ChangeDescription, &diffsetID, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	d.DiffSetID = idOrNil(diffsetID)

	if err := json.Unmarshal([]byte(bugs), &d.BugsClosed); err != nil {
		return nil, fmt.Errorf("unmarshal bugs_closed: %w", err)
	}

	d.LastUpdated, err = parseTime(lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated: %w", err)
	}

	return &d, nil
}
