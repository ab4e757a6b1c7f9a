package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/db"
	"github.com/groupmail/groupmail-services/internal/events"
	"github.com/groupmail/groupmail-services/internal/tokens"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListManager struct {
	mock.Mock
}

func (m *MockListManager) NewList(ctx context.Context, list, owner, secret string) error {
	return m.Called(ctx, list, owner, secret).Error(0)
}

func (m *MockListManager) AddMembers(ctx context.Context, list string, emails []string) error {
	return m.Called(ctx, list, emails).Error(0)
}

func (m *MockListManager) RemoveMembers(ctx context.Context, list string, emails []string) error {
	return m.Called(ctx, list, emails).Error(0)
}

func (m *MockListManager) RmList(ctx context.Context, list string) error {
	return m.Called(ctx, list).Error(0)
}

type sentClaim struct {
	Email      string
	Token      string
	ClaimantID uuid.NullUUID
}

type recordingNotifier struct {
	welcomes []string
	claims   []sentClaim
}

func (n *recordingNotifier) SendWelcomeEmail(ctx context.Context, email string) error {
	n.welcomes = append(n.welcomes, email)
	return nil
}

func (n *recordingNotifier) SendClaimEmail(ctx context.Context, email, token string, claimantID uuid.NullUUID) error {
	n.claims = append(n.claims, sentClaim{Email: email, Token: token, ClaimantID: claimantID})
	return nil
}

func (n *recordingNotifier) lastClaim(t *testing.T) sentClaim {
	t.Helper()
	require.NotEmpty(t, n.claims, "no claim email was sent")
	return n.claims[len(n.claims)-1]
}

type recordingEvents struct {
	events []events.Event
}

func (r *recordingEvents) Notify(ctx context.Context, ev events.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEvents) Close() {}

func (r *recordingEvents) types() []string {
	var types []string
	for _, ev := range r.events {
		types = append(types, ev.Type)
	}
	return types
}

type testEnv struct {
	svc      *Service
	db       *db.IdentityDB
	lists    *MockListManager
	notifier *recordingNotifier
	events   *recordingEvents
}

func newTestEnv(t *testing.T, modifyLists bool) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	identityDB, err := db.NewIdentityDB(db.DriverSQLite, ":memory:", &logger)
	require.NoError(t, err)
	require.NoError(t, identityDB.Migrate())
	t.Cleanup(func() { identityDB.Close() })

	gen, err := tokens.NewGenerator("test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:       identityDB,
		lists:    new(MockListManager),
		notifier: &recordingNotifier{},
		events:   &recordingEvents{},
	}
	env.svc = &Service{
		Store:    identityDB,
		Lists:    env.lists,
		Notifier: env.notifier,
		Tokens:   gen,
		Events:   env.events,
		Log:      &logger,
		Options:  Options{ModifyMailingLists: modifyLists},
	}
	t.Cleanup(func() { env.lists.AssertExpectations(t) })
	return env
}

func (e *testEnv) create(t *testing.T, email, phone, first, last string) *models.Account {
	t.Helper()
	account, err := e.svc.CreateAccount(context.Background(), AccountInput{
		Email:       email,
		PhoneNumber: phone,
		FirstName:   first,
		LastName:    last,
	})
	require.NoError(t, err)
	return account
}

func (e *testEnv) account(t *testing.T, id uuid.UUID) *models.Account {
	t.Helper()
	account, err := e.svc.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account
}

// failingStore wraps a store so that selected queries fail.
type failingStore struct {
	inner       *db.IdentityDB
	insertGroup error
}

func (s *failingStore) WithTx(ctx context.Context, fn func(q db.Queries) error) error {
	return s.inner.WithTx(ctx, func(q db.Queries) error {
		return fn(&failingQueries{Queries: q, store: s})
	})
}

type failingQueries struct {
	db.Queries
	store *failingStore
}

func (q *failingQueries) InsertGroup(ctx context.Context, group *models.Group) error {
	if q.store.insertGroup != nil {
		return q.store.insertGroup
	}
	return q.Queries.InsertGroup(ctx, group)
}

func TestRunRecordsSideEffectsOnlyAfterCommit(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	boom := errors.New("boom")
	err := env.svc.run(ctx, "test", func(o *op) error {
		o.welcomes = append(o.welcomes, "a@example.com")
		o.emit(events.NewEvent(events.AccountCreated, uuid.New(), "a@example.com"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, env.notifier.welcomes)
	assert.Empty(t, env.events.events)

	err = env.svc.run(ctx, "test", func(o *op) error {
		o.welcomes = append(o.welcomes, "a@example.com")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, env.notifier.welcomes)
}

func TestMailingListsDisabled(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.svc.CreateGroup(ctx, CreateGroupInput{CreatorEmail: "owner@example.com", Name: "hikers", Code: "trail1"})
	require.NoError(t, err)
	_, err = env.svc.AddMembers(ctx, "hikers", []string{"a@example.com"})
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteGroup(ctx, "hikers"))

	env.lists.AssertNotCalled(t, "NewList", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	env.lists.AssertNotCalled(t, "AddMembers", mock.Anything, mock.Anything, mock.Anything)
	env.lists.AssertNotCalled(t, "RmList", mock.Anything, mock.Anything)
}
