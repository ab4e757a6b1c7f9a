package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/models"
)

const groupColumns = `g.id, g.name, g.code, g.created_at`

// GetGroup retrieves a group by its ID.
func (t *Tx) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM mailing_groups g WHERE g.id = $1`
	return scanGroup(t.tx.QueryRowContext(ctx, query, id))
}

// GetGroupByName retrieves a group by its unique name.
func (t *Tx) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM mailing_groups g WHERE g.name = $1`
	return scanGroup(t.tx.QueryRowContext(ctx, query, name))
}

// ListGroups retrieves every group ordered by name.
func (t *Tx) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+groupColumns+` FROM mailing_groups g ORDER BY g.name`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving groups: %w", err)
	}
	return scanGroups(rows)
}

// InsertGroup creates a group, assigning an ID when none is set.
func (t *Tx) InsertGroup(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	group.CreatedAt = time.Now().UTC()

	_, err := t.execQuery(ctx, `
		INSERT INTO mailing_groups (id, name, code, created_at)
		VALUES ($1, $2, $3, $4)`,
		group.ID, group.Name, group.Code, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting group: %w", err)
	}
	return nil
}

// DeleteGroup deletes a group and its memberships.
func (t *Tx) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, err := t.execQuery(ctx, `DELETE FROM group_members WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting group members: %w", err)
	}
	if _, err := t.execQuery(ctx, `DELETE FROM mailing_groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting group: %w", err)
	}
	return nil
}

// AddGroupMember subscribes an email to a group. It reports false when the
// email was already a member, in which case nothing changes.
func (t *Tx) AddGroupMember(ctx context.Context, groupID uuid.UUID, email string, admin bool) (bool, error) {
	n, err := t.execQuery(ctx, `
		INSERT INTO group_members (group_id, email, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, email) DO NOTHING`,
		groupID, email, admin)
	if err != nil {
		return false, fmt.Errorf("error adding group member: %w", err)
	}
	return n > 0, nil
}

// RemoveGroupMember unsubscribes an email from a group, dropping any admin
// role with it. It reports false when the email was not a member.
func (t *Tx) RemoveGroupMember(ctx context.Context, groupID uuid.UUID, email string) (bool, error) {
	n, err := t.execQuery(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND email = $2`, groupID, email)
	if err != nil {
		return false, fmt.Errorf("error removing group member: %w", err)
	}
	return n > 0, nil
}

// SetGroupAdmin grants or revokes the admin role of an existing member.
func (t *Tx) SetGroupAdmin(ctx context.Context, groupID uuid.UUID, email string, admin bool) error {
	n, err := t.execQuery(ctx,
		`UPDATE group_members SET is_admin = $1 WHERE group_id = $2 AND email = $3`, admin, groupID, email)
	if err != nil {
		return fmt.Errorf("error updating group admin: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("error updating group admin: %s is not a member", email)
	}
	return nil
}

// GetMembership retrieves the membership of email in a group.
func (t *Tx) GetMembership(ctx context.Context, groupID uuid.UUID, email string) (*models.Membership, error) {
	var m models.Membership
	err := t.tx.QueryRowContext(ctx,
		`SELECT group_id, email, is_admin FROM group_members WHERE group_id = $1 AND email = $2`,
		groupID, email).Scan(&m.GroupID, &m.Email, &m.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning membership: %w", err)
	}
	return &m, nil
}

// ListGroupMembers retrieves the memberships of a group ordered by email.
func (t *Tx) ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.Membership, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT group_id, email, is_admin FROM group_members WHERE group_id = $1 ORDER BY email`, groupID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving group members: %w", err)
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.Email, &m.IsAdmin); err != nil {
			return nil, fmt.Errorf("error scanning group members: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListEmailGroups retrieves the groups an email is subscribed to.
func (t *Tx) ListEmailGroups(ctx context.Context, email string) ([]models.Group, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+groupColumns+`
		FROM mailing_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.email = $1
		ORDER BY g.name`, email)
	if err != nil {
		return nil, fmt.Errorf("error retrieving email groups: %w", err)
	}
	return scanGroups(rows)
}

func scanGroup(row *sql.Row) (*models.Group, error) {
	var g models.Group
	if err := row.Scan(&g.ID, &g.Name, &g.Code, &g.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning group: %w", err)
	}
	return &g, nil
}

func scanGroups(rows *sql.Rows) ([]models.Group, error) {
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Code, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning groups: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
