package services

import (
	"errors"
	"fmt"

	"github.com/groupmail/groupmail-services/models"
)

// Kind classifies the failures callers are expected to recover from.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidEmail
	KindInvalidField
	KindDuplicateEmail
	KindDuplicatePrimaryEmail
	KindDuplicatePhoneNumber
	KindInconsistentPhoneNumber
	KindAlreadyMember
	KindNotAMember
	KindGroupAlreadyExists
	KindNameTooLong
	KindCodeTooLong
	KindNameNotAllowed
	KindCodeNotAllowed
	KindGroupNotFound
	KindCodeInvalid
	KindAccountNotFound
	KindAccountInactive
	KindEmailNotFound
	KindAlreadyOwner
	KindClaimTokenInvalid
	KindExternalService
)

var kindNames = map[Kind]string{
	KindUnknown:                 "unknown",
	KindInvalidEmail:            "invalid_email",
	KindInvalidField:            "invalid_field",
	KindDuplicateEmail:          "duplicate_email",
	KindDuplicatePrimaryEmail:   "duplicate_primary_email",
	KindDuplicatePhoneNumber:    "duplicate_phone_number",
	KindInconsistentPhoneNumber: "inconsistent_phone_number",
	KindAlreadyMember:           "already_member",
	KindNotAMember:              "not_a_member",
	KindGroupAlreadyExists:      "group_already_exists",
	KindNameTooLong:             "name_too_long",
	KindCodeTooLong:             "code_too_long",
	KindNameNotAllowed:          "name_not_allowed",
	KindCodeNotAllowed:          "code_not_allowed",
	KindGroupNotFound:           "group_not_found",
	KindCodeInvalid:             "code_invalid",
	KindAccountNotFound:         "account_not_found",
	KindAccountInactive:         "account_inactive",
	KindEmailNotFound:           "email_not_found",
	KindAlreadyOwner:            "already_owner",
	KindClaimTokenInvalid:       "claim_token_invalid",
	KindExternalService:         "external_service_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is a caller-recoverable failure. Field and Value name the offending
// input where there is one; Details carries text reported by a remote
// service.
type Error struct {
	Kind    Kind
	Field   string
	Value   string
	Details string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Msg + ": " + e.Details
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so errors.Is(err, ErrDuplicateEmail)
// works for any duplicate email. A duplicate primary email is also a
// duplicate email.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == KindDuplicateEmail && e.Kind == KindDuplicatePrimaryEmail
}

// Sentinels for use with errors.Is.
var (
	ErrInvalidEmail            = &Error{Kind: KindInvalidEmail, Msg: "invalid email"}
	ErrInvalidField            = &Error{Kind: KindInvalidField, Msg: "invalid field"}
	ErrDuplicateEmail          = &Error{Kind: KindDuplicateEmail, Msg: "duplicate email"}
	ErrDuplicatePrimaryEmail   = &Error{Kind: KindDuplicatePrimaryEmail, Msg: "duplicate primary email"}
	ErrDuplicatePhoneNumber    = &Error{Kind: KindDuplicatePhoneNumber, Msg: "duplicate phone number"}
	ErrInconsistentPhoneNumber = &Error{Kind: KindInconsistentPhoneNumber, Msg: "inconsistent phone number"}
	ErrAlreadyMember           = &Error{Kind: KindAlreadyMember, Msg: "already a member"}
	ErrNotAMember              = &Error{Kind: KindNotAMember, Msg: "not a member"}
	ErrGroupAlreadyExists      = &Error{Kind: KindGroupAlreadyExists, Msg: "group already exists"}
	ErrNameTooLong             = &Error{Kind: KindNameTooLong, Msg: "group name too long"}
	ErrCodeTooLong             = &Error{Kind: KindCodeTooLong, Msg: "group code too long"}
	ErrNameNotAllowed          = &Error{Kind: KindNameNotAllowed, Msg: "group name not allowed"}
	ErrCodeNotAllowed          = &Error{Kind: KindCodeNotAllowed, Msg: "group code not allowed"}
	ErrGroupNotFound           = &Error{Kind: KindGroupNotFound, Msg: "group not found"}
	ErrCodeInvalid             = &Error{Kind: KindCodeInvalid, Msg: "group code invalid"}
	ErrAccountNotFound         = &Error{Kind: KindAccountNotFound, Msg: "account not found"}
	ErrAccountInactive         = &Error{Kind: KindAccountInactive, Msg: "account inactive"}
	ErrEmailNotFound           = &Error{Kind: KindEmailNotFound, Msg: "email not found"}
	ErrAlreadyOwner            = &Error{Kind: KindAlreadyOwner, Msg: "already owner"}
	ErrClaimTokenInvalid       = &Error{Kind: KindClaimTokenInvalid, Msg: "claim token invalid"}
	ErrExternalService         = &Error{Kind: KindExternalService, Msg: "external service error"}
)

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func duplicateFieldError(kind Kind, field, value string) *Error {
	return &Error{
		Kind:  kind,
		Field: field,
		Value: value,
		Msg:   fmt.Sprintf("An account with the %s %s already exists.", field, value),
	}
}

// claimRequiredError refuses email to a caller who has not proven they own
// it. owner is the account currently holding it.
func claimRequiredError(owner *models.Account, email string) *Error {
	kind := KindDuplicateEmail
	if owner.Email == email {
		kind = KindDuplicatePrimaryEmail
	}
	return &Error{
		Kind:  kind,
		Field: "email",
		Value: email,
		Msg:   fmt.Sprintf("The email %s belongs to another account. Request a claim to take it over.", email),
	}
}

func inconsistentPhoneError(email string) *Error {
	return &Error{
		Kind:  KindInconsistentPhoneNumber,
		Field: "email",
		Value: email,
		Msg:   fmt.Sprintf("The email %s is associated with a different phone number.", email),
	}
}

func groupExistsError(name, code string) *Error {
	msg := fmt.Sprintf("A group with name '%s' already exists.", name)
	if code != "" {
		msg = fmt.Sprintf("A group with name '%s' and code '%s' already exists.", name, code)
	}
	return &Error{Kind: KindGroupAlreadyExists, Field: "name", Value: name, Msg: msg}
}

func groupNotFoundError(name string) *Error {
	return &Error{
		Kind:  KindGroupNotFound,
		Field: "name",
		Value: name,
		Msg:   fmt.Sprintf("The group %s does not exist.", name),
	}
}

func codeInvalidError(name, code string) *Error {
	return &Error{
		Kind:  KindCodeInvalid,
		Field: "code",
		Value: code,
		Msg:   fmt.Sprintf("The group code %s is invalid for the group %s.", code, name),
	}
}

func notFoundError(kind Kind, field, value string) *Error {
	return &Error{
		Kind:  kind,
		Field: field,
		Value: value,
		Msg:   fmt.Sprintf("No %s %s was found.", field, value),
	}
}

func externalServiceError(op string, err error) *Error {
	return &Error{
		Kind:    KindExternalService,
		Details: err.Error(),
		Msg:     fmt.Sprintf("mailing list %s failed", op),
		Err:     err,
	}
}

func notAMemberError(group, email string) *Error {
	return &Error{
		Kind:  KindNotAMember,
		Field: "email",
		Value: email,
		Msg:   fmt.Sprintf("The email %s is not a member of %s.", email, group),
	}
}

func accountInactiveError(id string) *Error {
	return &Error{
		Kind:  KindAccountInactive,
		Field: "account",
		Value: id,
		Msg:   "The account has been deactivated.",
	}
}

func alreadyOwnerError(email string) *Error {
	return &Error{
		Kind:  KindAlreadyOwner,
		Field: "email",
		Value: email,
		Msg:   fmt.Sprintf("You already own the email %s.", email),
	}
}

func claimTokenInvalidError(email string) *Error {
	return &Error{
		Kind:  KindClaimTokenInvalid,
		Field: "email",
		Value: email,
		Msg:   fmt.Sprintf("The claim link for %s is invalid or has expired.", email),
	}
}
