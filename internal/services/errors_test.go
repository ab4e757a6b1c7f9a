package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := duplicateFieldError(KindDuplicatePhoneNumber, "phone number", "555-0100")

	assert.ErrorIs(t, err, ErrDuplicatePhoneNumber)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, "An account with the phone number 555-0100 already exists.", err.Error())

	wrapped := fmt.Errorf("create account: %w", err)
	assert.ErrorIs(t, wrapped, ErrDuplicatePhoneNumber)
	assert.Equal(t, KindDuplicatePhoneNumber, KindOf(wrapped))
}

func TestDuplicatePrimaryEmailIsDuplicateEmail(t *testing.T) {
	err := duplicateFieldError(KindDuplicatePrimaryEmail, "email", "a@example.com")

	assert.ErrorIs(t, err, ErrDuplicatePrimaryEmail)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	assert.NotErrorIs(t, duplicateFieldError(KindDuplicateEmail, "email", "a@example.com"), ErrDuplicatePrimaryEmail)
}

func TestExternalServiceError(t *testing.T) {
	remote := errors.New("newlist failed: List already exists")
	err := externalServiceError("newlist", remote)

	assert.ErrorIs(t, err, ErrExternalService)
	assert.ErrorIs(t, err, remote)
	assert.Equal(t, "mailing list newlist failed: newlist failed: List already exists", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "group_not_found", KindGroupNotFound.String())
	assert.Equal(t, "external_service_error", KindExternalService.String())
	assert.Equal(t, "unknown", Kind(999).String())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
