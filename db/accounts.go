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

const accountColumns = `a.id, a.email, a.username, a.phone_number, a.first_name, a.last_name, a.is_active, a.revision, a.created_at, a.updated_at`

// GetAccount retrieves a single account by its ID.
func (t *Tx) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.id = $1`
	return t.scanAccount(t.tx.QueryRowContext(ctx, query, id))
}

// GetAccountByEmail retrieves the account that owns the given email,
// whether or not it is the account's primary email.
func (t *Tx) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a
		JOIN emails e ON e.account_id = a.id
		WHERE e.email = $1`
	return t.scanAccount(t.tx.QueryRowContext(ctx, query, email))
}

// GetAccountByPhone retrieves the account holding the given phone number.
func (t *Tx) GetAccountByPhone(ctx context.Context, phone string) (*models.Account, error) {
	if phone == "" {
		return nil, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.phone_number = $1`
	return t.scanAccount(t.tx.QueryRowContext(ctx, query, phone))
}

// InsertAccount creates a new account, assigning its ID and timestamps.
func (t *Tx) InsertAccount(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Revision = 0

	_, err := t.execQuery(ctx, `
		INSERT INTO accounts (id, email, username, phone_number, first_name, last_name, is_active, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		account.ID,
		nullString(account.Email),
		nullString(account.Username),
		nullString(account.PhoneNumber),
		account.FirstName,
		account.LastName,
		account.IsActive,
		account.Revision,
		account.CreatedAt,
		account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting account: %w", err)
	}
	return nil
}

// UpdateAccount writes every field of the account and bumps its revision.
func (t *Tx) UpdateAccount(ctx context.Context, account *models.Account) error {
	updatedAt := time.Now().UTC()

	n, err := t.execQuery(ctx, `
		UPDATE accounts
		SET email = $1, username = $2, phone_number = $3, first_name = $4, last_name = $5,
			is_active = $6, revision = revision + 1, updated_at = $7
		WHERE id = $8`,
		nullString(account.Email),
		nullString(account.Username),
		nullString(account.PhoneNumber),
		account.FirstName,
		account.LastName,
		account.IsActive,
		updatedAt,
		account.ID)
	if err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("error updating account: account %s does not exist", account.ID)
	}

	account.Revision++
	account.UpdatedAt = updatedAt
	return nil
}

func (t *Tx) scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		ac       models.Account
		email    sql.NullString
		username sql.NullString
		phone    sql.NullString
	)
	if err := row.Scan(
		&ac.ID,
		&email,
		&username,
		&phone,
		&ac.FirstName,
		&ac.LastName,
		&ac.IsActive,
		&ac.Revision,
		&ac.CreatedAt,
		&ac.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Account does not exist, return nil account and nil error
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning account: %w", err)
	}

	ac.Email = email.String
	ac.Username = username.String
	ac.PhoneNumber = phone.String
	return &ac, nil
}
