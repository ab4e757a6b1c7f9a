package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	id := uuid.New()
	ev := NewEvent(AccountCreated, id, "a@example.com")

	assert.Equal(t, AccountCreated, ev.Type)
	assert.Equal(t, id.String(), ev.AccountID)
	assert.False(t, ev.Timestamp.IsZero())

	ev = NewEvent(AccountDeactivated, uuid.Nil, "")
	assert.Empty(t, ev.AccountID)
}

func TestEventPayload(t *testing.T) {
	ev := NewGroupEvent(MembersAdded, "hikers", []string{"a@example.com"})

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "group.members_added", got["type"])
	assert.Equal(t, "hikers", got["group"])
	assert.NotContains(t, got, "account_id")
}

func TestDiscard(t *testing.T) {
	var n Notifier = Discard{}
	assert.NoError(t, n.Notify(context.Background(), NewEvent(GroupCreated, uuid.New(), "")))
	n.Close()
}

func TestDecodeJoinRequest(t *testing.T) {
	req, err := DecodeJoinRequest([]byte(`{"name":"hikers","code":"secret","email":"a@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, "hikers", req.Name)
	assert.Equal(t, "secret", req.Code)
	assert.Equal(t, "a@example.com", req.Email)

	_, err = DecodeJoinRequest([]byte(`{"name":"hikers"}`))
	assert.Error(t, err)

	_, err = DecodeJoinRequest([]byte(`not json`))
	assert.Error(t, err)
}
