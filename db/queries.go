package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/models"
)

// Queries is the set of reads and writes available inside a transaction.
// Lookups return a nil record and a nil error when nothing matches.
type Queries interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByPhone(ctx context.Context, phone string) (*models.Account, error)
	InsertAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error

	GetEmail(ctx context.Context, email string) (*models.Email, error)
	ListAccountEmails(ctx context.Context, accountID uuid.UUID) ([]string, error)
	InsertEmail(ctx context.Context, email string, accountID uuid.UUID) error
	SetEmailOwner(ctx context.Context, email string, accountID uuid.NullUUID) error
	DetachAccountEmails(ctx context.Context, accountID uuid.UUID) error
	DeleteEmail(ctx context.Context, email string) error

	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	InsertGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	AddGroupMember(ctx context.Context, groupID uuid.UUID, email string, admin bool) (bool, error)
	RemoveGroupMember(ctx context.Context, groupID uuid.UUID, email string) (bool, error)
	SetGroupAdmin(ctx context.Context, groupID uuid.UUID, email string, admin bool) error
	GetMembership(ctx context.Context, groupID uuid.UUID, email string) (*models.Membership, error)
	ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.Membership, error)
	ListEmailGroups(ctx context.Context, email string) ([]models.Group, error)
}

var _ Queries = (*Tx)(nil)
