package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/internal/events"
	"github.com/groupmail/groupmail-services/models"
)

// CreateAccount registers a new account for in.Email and queues a welcome
// notification. An email already held by an incomplete account is merged
// into that account instead.
func (s *Service) CreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	in = in.Normalize()
	if err := ValidateAccountInput(in); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "create_account", func(o *op) error {
		var err error
		account, err = s.createAccount(o, in, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetOrCreateAccount resolves the account identified by the email and the
// phone number, creating one when neither is known. Blank fields on the
// resolved account are filled from in.
func (s *Service) GetOrCreateAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	in = in.Normalize()
	if err := ValidateAccountInput(in); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "get_or_create_account", func(o *op) error {
		var err error
		account, err = s.getOrCreate(o, in, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Populate attaches in.Email to the account, taking it from its current
// owner if needed, and fills blank name and phone fields. Every field of in
// is optional.
func (s *Service) Populate(ctx context.Context, accountID uuid.UUID, in AccountInput) (*models.Account, error) {
	in = in.Normalize()
	if err := validatePopulate(in); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "populate", func(o *op) error {
		var err error
		if account, err = s.loadAccount(o, accountID); err != nil {
			return err
		}
		return s.populate(o, account, in)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// RegisterAccount creates an account for a caller who has not proven that
// they own in.Email. An email that already has an owner is refused, and the
// caller has to claim it instead.
func (s *Service) RegisterAccount(ctx context.Context, in AccountInput) (*models.Account, error) {
	in = in.Normalize()
	if err := ValidateAccountInput(in); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "register_account", func(o *op) error {
		owner, err := o.q.GetAccountByEmail(o.ctx, in.Email)
		if err != nil {
			return err
		}
		if owner != nil {
			return claimRequiredError(owner, in.Email)
		}
		account, err = s.createAccount(o, in, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateOwnAccount is Populate on behalf of the account holder. Attaching
// an email that belongs to another account is refused; only a confirmed
// claim moves an email between accounts.
func (s *Service) UpdateOwnAccount(ctx context.Context, accountID uuid.UUID, in AccountInput) (*models.Account, error) {
	in = in.Normalize()
	if err := validatePopulate(in); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "update_own_account", func(o *op) error {
		var err error
		if account, err = s.loadAccount(o, accountID); err != nil {
			return err
		}
		if in.Email != "" {
			owner, err := o.q.GetAccountByEmail(o.ctx, in.Email)
			if err != nil {
				return err
			}
			if owner != nil && owner.ID != account.ID {
				return claimRequiredError(owner, in.Email)
			}
		}
		return s.populate(o, account, in)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func validatePopulate(in AccountInput) error {
	if in.Email != "" {
		if err := ValidateEmail(in.Email); err != nil {
			return err
		}
	}
	if err := ValidatePersonName("first name", in.FirstName); err != nil {
		return err
	}
	if err := ValidatePersonName("last name", in.LastName); err != nil {
		return err
	}
	return ValidatePhoneNumber(in.PhoneNumber)
}

// RemoveEmail detaches email from the account. When it was the primary
// email another owned email takes its place; when it was the last one the
// account is deactivated. With unsubscribe the email also leaves every
// group and its record is deleted.
func (s *Service) RemoveEmail(ctx context.Context, accountID uuid.UUID, email string, unsubscribe bool) (*models.Account, error) {
	in := AccountInput{Email: email}.Normalize()
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.run(ctx, "remove_email", func(o *op) error {
		var err error
		if account, err = s.loadAccount(o, accountID); err != nil {
			return err
		}
		return s.removeEmail(o, account, in.Email, unsubscribe)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Deactivate clears the identifying fields of the account and marks it
// inactive. Its emails are detached but keep their group memberships.
func (s *Service) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	return s.run(ctx, "deactivate", func(o *op) error {
		account, err := s.loadAccount(o, accountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return nil
		}
		return s.deactivate(o, account)
	})
}

// GetAccount retrieves an account with the emails it owns.
func (s *Service) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	var account *models.Account
	err := s.view(ctx, func(o *op) error {
		var err error
		account, err = s.loadAccount(o, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// FindAccountByEmail retrieves the account that owns email.
func (s *Service) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = AccountInput{Email: email}.Normalize().Email
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.view(ctx, func(o *op) error {
		var err error
		account, err = o.q.GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if account == nil {
			return notFoundError(KindAccountNotFound, "account with email", email)
		}
		account.Emails, err = o.q.ListAccountEmails(ctx, account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Memberships maps each email owned by the account to the names of the
// groups it belongs to.
func (s *Service) Memberships(ctx context.Context, accountID uuid.UUID) (map[string][]string, error) {
	memberships := make(map[string][]string)
	err := s.view(ctx, func(o *op) error {
		account, err := s.loadAccount(o, accountID)
		if err != nil {
			return err
		}
		for _, email := range account.Emails {
			groups, err := o.q.ListEmailGroups(ctx, email)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(groups))
			for _, g := range groups {
				names = append(names, g.Name)
			}
			memberships[email] = names
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (s *Service) loadAccount(o *op, id uuid.UUID) (*models.Account, error) {
	account, err := o.q.GetAccount(o.ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, notFoundError(KindAccountNotFound, "account", id.String())
	}
	if account.Emails, err = o.q.ListAccountEmails(o.ctx, account.ID); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) createAccount(o *op, in AccountInput, welcome bool) (*models.Account, error) {
	owner, err := o.q.GetAccountByEmail(o.ctx, in.Email)
	if err != nil {
		return nil, err
	}

	holder, err := o.q.GetAccountByPhone(o.ctx, in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if holder != nil && (owner == nil || holder.ID != owner.ID) {
		return nil, duplicateFieldError(KindDuplicatePhoneNumber, "phone number", in.PhoneNumber)
	}

	if owner != nil {
		if owner.IsComplete() {
			if owner.Email == in.Email {
				return nil, duplicateFieldError(KindDuplicatePrimaryEmail, "email", in.Email)
			}
			return nil, duplicateFieldError(KindDuplicateEmail, "email", in.Email)
		}
		if in.PhoneNumber != "" && owner.PhoneNumber != "" && owner.PhoneNumber != in.PhoneNumber {
			return nil, duplicateFieldError(KindDuplicateEmail, "email", in.Email)
		}
		if err := s.populate(o, owner, in); err != nil {
			return nil, err
		}
		return owner, nil
	}

	account := &models.Account{
		Email:       in.Email,
		Username:    in.Email,
		PhoneNumber: in.PhoneNumber,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		IsActive:    true,
	}
	if err := o.q.InsertAccount(o.ctx, account); err != nil {
		return nil, err
	}
	if err := s.attachEmail(o, account, in.Email); err != nil {
		return nil, err
	}
	account.Emails = []string{in.Email}

	if welcome {
		o.welcomes = append(o.welcomes, in.Email)
	}
	o.emit(events.NewEvent(events.AccountCreated, account.ID, in.Email))
	return account, nil
}

func (s *Service) getOrCreate(o *op, in AccountInput, welcome bool) (*models.Account, error) {
	byEmail, err := o.q.GetAccountByEmail(o.ctx, in.Email)
	if err != nil {
		return nil, err
	}
	byPhone, err := o.q.GetAccountByPhone(o.ctx, in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	switch {
	case byEmail != nil && byPhone != nil:
		if byEmail.ID != byPhone.ID {
			return nil, inconsistentPhoneError(in.Email)
		}
		account = byEmail
	case byPhone != nil:
		account = byPhone
	case byEmail != nil:
		if in.PhoneNumber != "" && byEmail.PhoneNumber != "" && byEmail.PhoneNumber != in.PhoneNumber {
			return nil, inconsistentPhoneError(in.Email)
		}
		account = byEmail
	default:
		return s.createAccount(o, in, welcome)
	}

	if err := s.populate(o, account, in); err != nil {
		return nil, err
	}
	return account, nil
}

// populate never overwrites a non-blank field.
func (s *Service) populate(o *op, account *models.Account, in AccountInput) error {
	if !account.IsActive {
		return accountInactiveError(account.ID.String())
	}

	if in.Email != "" {
		if err := s.attachEmail(o, account, in.Email); err != nil {
			return err
		}
	}

	changed := false
	if in.FirstName != "" && account.FirstName == "" {
		account.FirstName = in.FirstName
		changed = true
	}
	if in.LastName != "" && account.LastName == "" {
		account.LastName = in.LastName
		changed = true
	}
	if in.PhoneNumber != "" && account.PhoneNumber == "" {
		holder, err := o.q.GetAccountByPhone(o.ctx, in.PhoneNumber)
		if err != nil {
			return err
		}
		if holder != nil && holder.ID != account.ID {
			return duplicateFieldError(KindDuplicatePhoneNumber, "phone number", in.PhoneNumber)
		}
		account.PhoneNumber = in.PhoneNumber
		changed = true
	}

	if changed {
		if err := o.q.UpdateAccount(o.ctx, account); err != nil {
			return err
		}
	}

	var err error
	account.Emails, err = o.q.ListAccountEmails(o.ctx, account.ID)
	return err
}

// attachEmail makes account the owner of email, creating the record if it
// does not exist and releasing it from a previous owner.
func (s *Service) attachEmail(o *op, account *models.Account, email string) error {
	e, err := o.q.GetEmail(o.ctx, email)
	if err != nil {
		return err
	}

	switch {
	case e == nil:
		return o.q.InsertEmail(o.ctx, email, account.ID)
	case e.OwnedBy(account.ID):
		return nil
	case !e.AccountID.Valid:
		return o.q.SetEmailOwner(o.ctx, email, uuid.NullUUID{UUID: account.ID, Valid: true})
	}

	donor, err := o.q.GetAccount(o.ctx, e.AccountID.UUID)
	if err != nil {
		return err
	}
	if err := o.q.SetEmailOwner(o.ctx, email, uuid.NullUUID{UUID: account.ID, Valid: true}); err != nil {
		return err
	}
	if donor == nil {
		return nil
	}
	return s.releaseEmail(o, donor, email)
}

// releaseEmail settles an account after email has stopped belonging to it.
// The account's revision always changes, which invalidates outstanding
// claim tokens.
func (s *Service) releaseEmail(o *op, account *models.Account, email string) error {
	remaining, err := o.q.ListAccountEmails(o.ctx, account.ID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return s.deactivate(o, account)
	}

	if account.Email == email {
		account.Email = remaining[0]
		account.Username = remaining[0]
	}
	account.Emails = remaining
	return o.q.UpdateAccount(o.ctx, account)
}

func (s *Service) removeEmail(o *op, account *models.Account, email string, unsubscribe bool) error {
	e, err := o.q.GetEmail(o.ctx, email)
	if err != nil {
		return err
	}
	if e == nil || !e.OwnedBy(account.ID) {
		return notFoundError(KindEmailNotFound, "email", email)
	}

	if unsubscribe {
		groups, err := o.q.ListEmailGroups(o.ctx, email)
		if err != nil {
			return err
		}
		for i := range groups {
			if err := s.syncRemoveMembers(o.ctx, &groups[i], []string{email}); err != nil {
				return err
			}
		}
		if err := o.q.DeleteEmail(o.ctx, email); err != nil {
			return err
		}
	} else if err := o.q.SetEmailOwner(o.ctx, email, uuid.NullUUID{}); err != nil {
		return err
	}

	return s.releaseEmail(o, account, email)
}

func (s *Service) deactivate(o *op, account *models.Account) error {
	if err := o.q.DetachAccountEmails(o.ctx, account.ID); err != nil {
		return err
	}

	account.Email = ""
	account.Username = ""
	account.PhoneNumber = ""
	account.FirstName = ""
	account.LastName = ""
	account.IsActive = false
	account.Emails = nil
	if err := o.q.UpdateAccount(o.ctx, account); err != nil {
		return err
	}

	o.emit(events.NewEvent(events.AccountDeactivated, account.ID, ""))
	return nil
}
