package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwner() *models.Account {
	return &models.Account{
		ID:       uuid.New(),
		Email:    "owner@example.com",
		IsActive: true,
	}
}

func TestNewGeneratorRequiresSecret(t *testing.T) {
	_, err := NewGenerator("", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	g, err := NewGenerator("secret", time.Hour)
	require.NoError(t, err)

	owner := newOwner()
	token, err := g.MakeToken(owner)
	require.NoError(t, err)

	assert.True(t, g.CheckToken(owner, token))
	assert.False(t, g.CheckToken(owner, token+"0"))
	assert.False(t, g.CheckToken(owner, "garbage"))
	assert.False(t, g.CheckToken(nil, token))
}

func TestTokenBoundToOwnerState(t *testing.T) {
	g, err := NewGenerator("secret", 0)
	require.NoError(t, err)

	owner := newOwner()
	token, err := g.MakeToken(owner)
	require.NoError(t, err)

	other := newOwner()
	assert.False(t, g.CheckToken(other, token))

	owner.Revision++
	assert.False(t, g.CheckToken(owner, token))
}

func TestTokenSecret(t *testing.T) {
	g1, _ := NewGenerator("one", 0)
	g2, _ := NewGenerator("two", 0)

	owner := newOwner()
	token, err := g1.MakeToken(owner)
	require.NoError(t, err)
	assert.False(t, g2.CheckToken(owner, token))
}

func TestTokenExpiry(t *testing.T) {
	g, err := NewGenerator("secret", time.Hour)
	require.NoError(t, err)

	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return issued }

	owner := newOwner()
	token, err := g.MakeToken(owner)
	require.NoError(t, err)

	g.now = func() time.Time { return issued.Add(59 * time.Minute) }
	assert.True(t, g.CheckToken(owner, token))

	g.now = func() time.Time { return issued.Add(61 * time.Minute) }
	assert.False(t, g.CheckToken(owner, token))
}
