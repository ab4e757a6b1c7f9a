package db

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts a throwaway PostgreSQL server and returns
// its connection string.
func setupPostgresContainer(t *testing.T) string {
	if os.Getenv("GROUPMAIL_PG_TESTS") != "1" {
		t.Skip("set GROUPMAIL_PG_TESTS=1 to run PostgreSQL tests")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:13",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "groupmail",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("could not start container: %s", err)
	}
	t.Cleanup(func() { postgresC.Terminate(ctx) })

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)
	port, err := postgresC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/groupmail?sslmode=disable", host, port.Port())
}

func TestPostgresMigrateAndQuery(t *testing.T) {
	connStr := setupPostgresContainer(t)

	logger := zerolog.Nop()
	identityDB, err := NewIdentityDB(DriverPostgres, connStr, &logger)
	require.NoError(t, err)
	defer identityDB.Close()

	require.NoError(t, identityDB.Migrate())

	ctx := context.Background()
	account := &models.Account{Email: "pg@example.com", Username: "pg@example.com", IsActive: true}

	err = identityDB.WithTx(ctx, func(q Queries) error {
		if err := q.InsertAccount(ctx, account); err != nil {
			return err
		}
		if err := q.InsertEmail(ctx, account.Email, account.ID); err != nil {
			return err
		}
		group := &models.Group{Name: "pggroup", Code: "code"}
		if err := q.InsertGroup(ctx, group); err != nil {
			return err
		}
		added, err := q.AddGroupMember(ctx, group.ID, account.Email, true)
		assert.True(t, added)
		return err
	})
	require.NoError(t, err)

	err = identityDB.WithTx(ctx, func(q Queries) error {
		found, err := q.GetAccountByEmail(ctx, "pg@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, account.ID, found.ID)

		groups, err := q.ListEmailGroups(ctx, "pg@example.com")
		require.NoError(t, err)
		assert.Len(t, groups, 1)
		return nil
	})
	require.NoError(t, err)
}
