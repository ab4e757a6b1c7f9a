package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

const (
	// MaxGroupFieldLen bounds group names and codes.
	MaxGroupFieldLen = 20
	maxEmailLen      = 128
	maxPersonLen     = 30
)

var (
	groupFieldPattern  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	personNamePattern  = regexp.MustCompile(`^[\w.'-]+$`)
	phoneNumberPattern = regexp.MustCompile(`^[\d.'-]+$`)
	emailSeparator     = regexp.MustCompile(`[^\w.\-+@]+`)
)

// AccountInput carries the identifying fields used to create, find or
// populate an account. Blank fields are treated as absent.
type AccountInput struct {
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
}

// Normalize trims every field and lowercases the email.
func (in AccountInput) Normalize() AccountInput {
	return AccountInput{
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
	}
}

// CreateGroupInput carries the fields of a new group.
type CreateGroupInput struct {
	CreatorEmail string
	Name         string
	Code         string
}

func (in CreateGroupInput) Normalize() CreateGroupInput {
	return CreateGroupInput{
		CreatorEmail: strings.ToLower(strings.TrimSpace(in.CreatorEmail)),
		Name:         strings.TrimSpace(in.Name),
		Code:         strings.TrimSpace(in.Code),
	}
}

// JoinInput carries a request to join a group by name and code.
type JoinInput struct {
	Name  string
	Code  string
	Email string
}

func (in JoinInput) Normalize() JoinInput {
	return JoinInput{
		Name:  strings.TrimSpace(in.Name),
		Code:  strings.TrimSpace(in.Code),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
	}
}

// ValidateEmail checks that email is a bare, well-formed address.
func ValidateEmail(email string) error {
	invalid := &Error{
		Kind:  KindInvalidEmail,
		Field: "email",
		Value: email,
		Msg:   fmt.Sprintf("The email %s appears to be invalid.", email),
	}
	if email == "" || len(email) > maxEmailLen {
		return invalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid
	}
	return nil
}

// ValidateGroupName checks the length and charset of a group name.
func ValidateGroupName(name string) error {
	return validateGroupField("name", name, KindNameTooLong, KindNameNotAllowed)
}

// ValidateGroupCode checks the length and charset of a group code.
func ValidateGroupCode(code string) error {
	return validateGroupField("code", code, KindCodeTooLong, KindCodeNotAllowed)
}

func validateGroupField(field, value string, tooLong, notAllowed Kind) error {
	if len(value) > MaxGroupFieldLen {
		return &Error{
			Kind:  tooLong,
			Field: field,
			Value: value,
			Msg:   fmt.Sprintf("The group %s may not exceed %d characters.", field, MaxGroupFieldLen),
		}
	}
	if !groupFieldPattern.MatchString(value) {
		return &Error{
			Kind:  notAllowed,
			Field: field,
			Value: value,
			Msg:   fmt.Sprintf("The group %s may only contain letters and numbers.", field),
		}
	}
	return nil
}

// ValidatePersonName checks an optional first or last name.
func ValidatePersonName(field, value string) error {
	if value == "" {
		return nil
	}
	if len(value) > maxPersonLen || !personNamePattern.MatchString(value) {
		return &Error{
			Kind:  KindInvalidField,
			Field: field,
			Value: value,
			Msg:   fmt.Sprintf("The %s may contain only letters, numbers, hyphens, apostrophes, and periods.", field),
		}
	}
	return nil
}

// ValidatePhoneNumber checks an optional phone number.
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > maxPersonLen || !phoneNumberPattern.MatchString(phone) {
		return &Error{
			Kind:  KindInvalidField,
			Field: "phone number",
			Value: phone,
			Msg:   "The phone number may only contain numbers.",
		}
	}
	return nil
}

// ValidateAccountInput applies the email, name and phone checks to a
// normalized input. The email is required.
func ValidateAccountInput(in AccountInput) error {
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := ValidatePersonName("first name", in.FirstName); err != nil {
		return err
	}
	if err := ValidatePersonName("last name", in.LastName); err != nil {
		return err
	}
	return ValidatePhoneNumber(in.PhoneNumber)
}

// ValidateCreateGroup applies the name, code and creator email checks to a
// normalized input.
func ValidateCreateGroup(in CreateGroupInput) error {
	if err := ValidateGroupName(in.Name); err != nil {
		return err
	}
	if err := ValidateGroupCode(in.Code); err != nil {
		return err
	}
	return ValidateEmail(in.CreatorEmail)
}

// ParseEmailList splits free text into addresses, lowercased and without
// duplicates. It does not validate them.
func ParseEmailList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return normalizeEmails(emailSeparator.Split(raw, -1))
}

func normalizeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	var out []string
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}
