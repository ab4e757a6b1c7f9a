package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/internal/events"
	"github.com/groupmail/groupmail-services/models"
)

// RequestClaim issues a claim token for email, bound to the account that
// currently owns it, and sends it to that address. An email nobody owns
// gets a placeholder account first. claimantID is invalid for anonymous
// claims.
func (s *Service) RequestClaim(ctx context.Context, email string, claimantID uuid.NullUUID) error {
	email = AccountInput{Email: email}.Normalize().Email
	if err := ValidateEmail(email); err != nil {
		return err
	}

	return s.run(ctx, "request_claim", func(o *op) error {
		if claimantID.Valid {
			claimant, err := s.loadAccount(o, claimantID.UUID)
			if err != nil {
				return err
			}
			if !claimant.IsActive {
				return accountInactiveError(claimant.ID.String())
			}
		}

		owner, err := o.q.GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if owner == nil {
			if owner, err = s.createAccount(o, AccountInput{Email: email}, false); err != nil {
				return err
			}
		}
		if claimantID.Valid && owner.ID == claimantID.UUID {
			return alreadyOwnerError(email)
		}

		token, err := s.Tokens.MakeToken(owner)
		if err != nil {
			return err
		}
		o.claims = append(o.claims, claimNotice{email: email, token: token, claimantID: claimantID})
		return nil
	})
}

// ConfirmClaim moves email to the claimant when token is valid for its
// current owner. Without a claimant a new account is created for the
// email. A token stops validating once the claim succeeds, because the
// owner changes.
func (s *Service) ConfirmClaim(ctx context.Context, email, token string, claimantID uuid.NullUUID) (*models.Account, error) {
	email = AccountInput{Email: email}.Normalize().Email
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "confirm_claim", func(o *op) error {
		owner, err := o.q.GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if owner == nil || !s.Tokens.CheckToken(owner, token) {
			return claimTokenInvalidError(email)
		}

		if claimantID.Valid && owner.ID == claimantID.UUID {
			account, err = s.loadAccount(o, owner.ID)
			return err
		}

		var claimant *models.Account
		if claimantID.Valid {
			if claimant, err = s.loadAccount(o, claimantID.UUID); err != nil {
				return err
			}
			if !claimant.IsActive {
				return accountInactiveError(claimant.ID.String())
			}
		}

		if err := s.removeEmail(o, owner, email, false); err != nil {
			return err
		}

		if claimant != nil {
			if err := s.populate(o, claimant, AccountInput{Email: email}); err != nil {
				return err
			}
			account = claimant
		} else if account, err = s.createAccount(o, AccountInput{Email: email}, true); err != nil {
			return err
		}

		o.emit(events.NewEvent(events.EmailClaimed, account.ID, email))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
