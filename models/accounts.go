package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a person identified by one or more email addresses
// and, optionally, a phone number.
type Account struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	IsActive    bool      `json:"isActive"`
	Revision    int64     `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Emails      []string  `json:"emails,omitempty"`
}

// IsComplete reports whether the first name, last name and phone number
// are all populated.
func (a *Account) IsComplete() bool {
	return a.FirstName != "" && a.LastName != "" && a.PhoneNumber != ""
}

// Email is an address owned by at most one account. A detached email has
// no owner but keeps its group memberships.
type Email struct {
	Email     string        `json:"email"`
	AccountID uuid.NullUUID `json:"accountId"`
}

// OwnedBy reports whether the email is attached to the given account.
func (e *Email) OwnedBy(accountID uuid.UUID) bool {
	return e.AccountID.Valid && e.AccountID.UUID == accountID
}

// AccountRequest is the payload used to register or look up an account.
type AccountRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

// AccountResponse represents a response with a single account.
type AccountResponse struct {
	Account     Account             `json:"account"`
	Memberships map[string][]string `json:"memberships,omitempty"`
}
