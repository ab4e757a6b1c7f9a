package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last+tag@sub.example.org", "o'neil@example.ie"}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{"", "plain", "a@", "@example.com", "Ann <a@example.com>", "a b@example.com", strings.Repeat("a", 120) + "@example.com"}
	for _, email := range invalid {
		assert.ErrorIs(t, ValidateEmail(email), ErrInvalidEmail, email)
	}
}

func TestValidateGroupName(t *testing.T) {
	assert.NoError(t, ValidateGroupName("hikers2024"))
	assert.NoError(t, ValidateGroupName(strings.Repeat("a", MaxGroupFieldLen)))

	assert.ErrorIs(t, ValidateGroupName("bad name!"), ErrNameNotAllowed)
	assert.ErrorIs(t, ValidateGroupName("under_score"), ErrNameNotAllowed)
	assert.ErrorIs(t, ValidateGroupName(""), ErrNameNotAllowed)
	assert.ErrorIs(t, ValidateGroupName(strings.Repeat("a", MaxGroupFieldLen+1)), ErrNameTooLong)

	// Length is checked before the charset
	assert.ErrorIs(t, ValidateGroupName(strings.Repeat("!", MaxGroupFieldLen+1)), ErrNameTooLong)
}

func TestValidateGroupCode(t *testing.T) {
	assert.NoError(t, ValidateGroupCode("Secret42"))
	assert.ErrorIs(t, ValidateGroupCode("se cret"), ErrCodeNotAllowed)
	assert.ErrorIs(t, ValidateGroupCode(strings.Repeat("c", 21)), ErrCodeTooLong)
}

func TestValidatePersonName(t *testing.T) {
	assert.NoError(t, ValidatePersonName("first name", ""))
	assert.NoError(t, ValidatePersonName("first name", "Mary-Jane"))
	assert.NoError(t, ValidatePersonName("last name", "O'Neil"))

	err := ValidatePersonName("last name", "Smith & Sons")
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, "last name", err.(*Error).Field)

	assert.ErrorIs(t, ValidatePersonName("first name", strings.Repeat("a", 31)), ErrInvalidField)
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.NoError(t, ValidatePhoneNumber(""))
	assert.NoError(t, ValidatePhoneNumber("555-0100"))
	assert.NoError(t, ValidatePhoneNumber("555.0100"))
	assert.ErrorIs(t, ValidatePhoneNumber("call me"), ErrInvalidField)
}

func TestValidateAccountInput(t *testing.T) {
	in := AccountInput{Email: " A@Example.COM ", FirstName: " Ann ", PhoneNumber: " 555-0100 "}.Normalize()
	assert.Equal(t, AccountInput{Email: "a@example.com", FirstName: "Ann", PhoneNumber: "555-0100"}, in)
	assert.NoError(t, ValidateAccountInput(in))

	in.LastName = "L!"
	assert.ErrorIs(t, ValidateAccountInput(in), ErrInvalidField)

	assert.ErrorIs(t, ValidateAccountInput(AccountInput{}), ErrInvalidEmail)
}

func TestParseEmailList(t *testing.T) {
	got := ParseEmailList("a@example.com, B@example.com;c+tag@example.com\n a@example.com")
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c+tag@example.com"}, got)

	assert.Nil(t, ParseEmailList("   "))
}
