package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/efisher/reviewhub/internal/domain/fault"
	"github.com/efisher/reviewhub/internal/domain/model"
	"github.com/efisher/reviewhub/internal/domain/port/driven"
)

var _ driven.GroupStore = (*GroupRepo)(nil)

// GroupRepo is the SQLite implementation of the GroupStore port interface.
type GroupRepo struct {
	db *DB
}

// NewGroupRepo creates a new GroupRepo backed by the given DB.
func NewGroupRepo(db *DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Create inserts a group and returns it with the assigned ID.
func (r *GroupRepo) Create(ctx context.Context, g model.Group) (model.Group, error) {
	res, err := r.db.Writer.ExecContext(ctx,
		`INSERT INTO groups (local_site_id, name, display_name, invite_only) VALUES (?, ?, ?, ?)`,
		nullableID(g.LocalSiteID), g.Name, g.DisplayName, boolToInt(g.InviteOnly))
	if err != nil {
		return model.Group{}, fmt.Errorf("insert group %q: %w", g.Name, err)
	}

	g.ID, err = res.LastInsertId()
	if err != nil {
		return model.Group{}, fmt.Errorf("group insert id: %w", err)
	}

	return g, nil
}

// GetByID retrieves a group by id. Returns fault.ErrNotFound if absent.
func (r *GroupRepo) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	g, err := scanGroup(r.db.Reader.QueryRowContext(ctx,
		`SELECT id, local_site_id, name, display_name, invite_only FROM groups WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}

	return g, nil
}

// GetByName retrieves a group by name within the given site scope. The
// match is case-insensitive, against name and display name.
func (r *GroupRepo) GetByName(ctx context.Context, siteID *int64, name string) (*model.Group, error) {
	const query = `
		SELECT id, local_site_id, name, display_name, invite_only
		FROM groups
		WHERE COALESCE(local_site_id, 0) = ?
		  AND (name = ? COLLATE NOCASE OR display_name = ? COLLATE NOCASE)
	`

	g, err := scanGroup(r.db.Reader.QueryRowContext(ctx, query, scope(siteID), name, name))
	if err == sql.ErrNoRows {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group %q: %w", name, err)
	}

	return g, nil
}

// GetByIDs retrieves groups for the given ids, preserving the input order.
func (r *GroupRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.Group, error) {
	if len(ids) == 0 {
		return []model.Group{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, local_site_id, name, display_name, invite_only FROM groups WHERE id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query groups by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]model.Group, len(ids))
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		byID[g.ID] = *g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	groups := make([]model.Group, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			groups = append(groups, g)
		}
	}

	return groups, nil
}

// ListBySite returns all groups in the given site scope ordered by name.
func (r *GroupRepo) ListBySite(ctx context.Context, siteID *int64) ([]model.Group, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, local_site_id, name, display_name, invite_only
		 FROM groups WHERE COALESCE(local_site_id, 0) = ? ORDER BY name`,
		scope(siteID))
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

// AddMember adds a user to the group. Adding an existing member is a no-op.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.Writer.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_users (group_id, user_id) VALUES (?, ?)`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("add group member: %w", err)
	}

	return nil
}

// RemoveMember removes a user from the group.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM group_users WHERE group_id = ? AND user_id = ?`, groupID, userID)
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}

	return nil
}

// IsMember reports whether the user belongs to the group.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var one int
	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT 1 FROM group_users WHERE group_id = ? AND user_id = ?`,
		groupID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}

	return true, nil
}

// MemberIDs returns the ids of all group members ordered by join rowid, so
// notification fan-out is stable.
func (r *GroupRepo) MemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT user_id FROM group_users WHERE group_id = ? ORDER BY rowid`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}

	return ids, nil
}

func scanGroup(s scanner) (*model.Group, error) {
	var g model.Group
	var siteID sql.NullInt64
	var inviteOnly int

	if err := s.Scan(&g.ID, &siteID, &g.Name, &g.DisplayName, &inviteOnly); err != nil {
		return nil, err
	}

	g.LocalSiteID = idOrNil(siteID)
	g.InviteOnly = inviteOnly != 0

	return &g, nil
}
