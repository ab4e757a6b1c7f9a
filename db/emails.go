package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/models"
)

// GetEmail retrieves an email record, attached or not.
func (t *Tx) GetEmail(ctx context.Context, email string) (*models.Email, error) {
	var e models.Email
	err := t.tx.QueryRowContext(ctx,
		`SELECT email, account_id FROM emails WHERE email = $1`, email).
		Scan(&e.Email, &e.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning email: %w", err)
	}
	return &e, nil
}

// ListAccountEmails returns every address owned by the account in a stable
// order.
func (t *Tx) ListAccountEmails(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT email FROM emails WHERE account_id = $1 ORDER BY email`, accountID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving account emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("error scanning account emails: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// InsertEmail creates an email record owned by accountID.
func (t *Tx) InsertEmail(ctx context.Context, email string, accountID uuid.UUID) error {
	_, err := t.execQuery(ctx,
		`INSERT INTO emails (email, account_id) VALUES ($1, $2)`, email, accountID)
	if err != nil {
		return fmt.Errorf("error inserting email: %w", err)
	}
	return nil
}

// SetEmailOwner moves an email to another account, or detaches it when
// accountID is not valid.
func (t *Tx) SetEmailOwner(ctx context.Context, email string, accountID uuid.NullUUID) error {
	n, err := t.execQuery(ctx,
		`UPDATE emails SET account_id = $1 WHERE email = $2`, accountID, email)
	if err != nil {
		return fmt.Errorf("error updating email owner: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("error updating email owner: email %s does not exist", email)
	}
	return nil
}

// DetachAccountEmails detaches every email owned by the account.
func (t *Tx) DetachAccountEmails(ctx context.Context, accountID uuid.UUID) error {
	_, err := t.execQuery(ctx,
		`UPDATE emails SET account_id = NULL WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("error detaching account emails: %w", err)
	}
	return nil
}

// DeleteEmail deletes an email record together with its memberships.
func (t *Tx) DeleteEmail(ctx context.Context, email string) error {
	if _, err := t.execQuery(ctx, `DELETE FROM group_members WHERE email = $1`, email); err != nil {
		return fmt.Errorf("error deleting email memberships: %w", err)
	}
	if _, err := t.execQuery(ctx, `DELETE FROM emails WHERE email = $1`, email); err != nil {
		return fmt.Errorf("error deleting email: %w", err)
	}
	return nil
}
