package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupmail/groupmail-services/db"
	"github.com/groupmail/groupmail-services/internal/events"
	"github.com/groupmail/groupmail-services/internal/metrics"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
)

// Store runs a function inside a single database transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(q db.Queries) error) error
}

// ListManager is the remote mailing-list server. Any error is a hard
// failure of the operation that triggered it.
type ListManager interface {
	NewList(ctx context.Context, list, ownerEmail, secret string) error
	AddMembers(ctx context.Context, list string, emails []string) error
	RemoveMembers(ctx context.Context, list string, emails []string) error
	RmList(ctx context.Context, list string) error
}

// Notifier delivers welcome and claim messages.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, email string) error
	SendClaimEmail(ctx context.Context, email, token string, claimantID uuid.NullUUID) error
}

// TokenGenerator issues claim tokens bound to the current state of the
// account that owns an email.
type TokenGenerator interface {
	MakeToken(owner *models.Account) (string, error)
	CheckToken(owner *models.Account, token string) bool
}

// Options are the switches fixed at construction time.
type Options struct {
	// ModifyMailingLists gates every call to the mailing-list server.
	ModifyMailingLists bool
}

// Service is the account reconciliation engine together with the group
// membership manager and the claim workflow. Every exported operation runs
// in its own transaction.
type Service struct {
	Store    Store
	Lists    ListManager
	Notifier Notifier
	Tokens   TokenGenerator
	Events   events.Notifier
	Log      *zerolog.Logger
	Options  Options
}

type claimNotice struct {
	email      string
	token      string
	claimantID uuid.NullUUID
}

// op collects the side effects of one transaction so that they are only
// emitted once it has committed.
type op struct {
	ctx      context.Context
	q        db.Queries
	welcomes []string
	claims   []claimNotice
	events   []events.Event
}

func (o *op) emit(ev events.Event) {
	o.events = append(o.events, ev)
}

func (s *Service) run(ctx context.Context, name string, fn func(o *op) error) error {
	o := &op{ctx: ctx}
	err := s.Store.WithTx(ctx, func(q db.Queries) error {
		o.q = q
		return fn(o)
	})

	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	metrics.ObserveOperation(name, outcome)

	if err != nil {
		s.logger().Debug().Err(err).Str("operation", name).Msg("operation failed")
		return err
	}

	s.afterCommit(ctx, o)
	return nil
}

// afterCommit sends notifications and publishes events. Failures are logged
// and never undo the committed operation.
func (s *Service) afterCommit(ctx context.Context, o *op) {
	logger := s.logger()

	if s.Notifier != nil {
		for _, email := range o.welcomes {
			if err := s.Notifier.SendWelcomeEmail(ctx, email); err != nil {
				logger.Error().Err(err).Str("email", email).Msg("Failed to send welcome email")
			}
		}
		for _, c := range o.claims {
			if err := s.Notifier.SendClaimEmail(ctx, c.email, c.token, c.claimantID); err != nil {
				logger.Error().Err(err).Str("email", c.email).Msg("Failed to send claim email")
			}
		}
	}

	if s.Events != nil {
		for _, ev := range o.events {
			if err := s.Events.Notify(ctx, ev); err != nil {
				logger.Error().Err(err).Str("event", ev.Type).Msg("Failed to publish event")
			}
		}
	}
}

func (s *Service) logger() *zerolog.Logger {
	if s.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.Log
}

func (s *Service) syncNewList(ctx context.Context, g *models.Group, owner string) error {
	if !s.Options.ModifyMailingLists {
		return nil
	}
	if err := s.Lists.NewList(ctx, g.ListName(), owner, g.Code); err != nil {
		return externalServiceError("newlist", err)
	}
	return nil
}

func (s *Service) syncAddMembers(ctx context.Context, g *models.Group, emails []string) error {
	if !s.Options.ModifyMailingLists || len(emails) == 0 {
		return nil
	}
	if err := s.Lists.AddMembers(ctx, g.ListName(), emails); err != nil {
		return externalServiceError("add_members", err)
	}
	return nil
}

func (s *Service) syncRemoveMembers(ctx context.Context, g *models.Group, emails []string) error {
	if !s.Options.ModifyMailingLists || len(emails) == 0 {
		return nil
	}
	if err := s.Lists.RemoveMembers(ctx, g.ListName(), emails); err != nil {
		return externalServiceError("remove_members", err)
	}
	return nil
}

func (s *Service) syncRmList(ctx context.Context, g *models.Group) error {
	if !s.Options.ModifyMailingLists {
		return nil
	}
	if err := s.Lists.RmList(ctx, g.ListName()); err != nil {
		return externalServiceError("rmlist", err)
	}
	return nil
}

// view runs a read-only function in a transaction. It records no metrics
// and emits nothing.
func (s *Service) view(ctx context.Context, fn func(o *op) error) error {
	return s.Store.WithTx(ctx, func(q db.Queries) error {
		return fn(&op{ctx: ctx, q: q})
	})
}
