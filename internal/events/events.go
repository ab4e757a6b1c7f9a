package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event types published after a committed operation.
const (
	AccountCreated     = "account.created"
	AccountDeactivated = "account.deactivated"
	EmailClaimed       = "email.claimed"
	GroupCreated       = "group.created"
	GroupDeleted       = "group.deleted"
	MembersAdded       = "group.members_added"
	MembersRemoved     = "group.members_removed"
)

// Event is the JSON payload of a published message.
type Event struct {
	Type      string    `json:"type"`
	AccountID string    `json:"account_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Group     string    `json:"group,omitempty"`
	Emails    []string  `json:"emails,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an account-scoped event.
func NewEvent(eventType string, accountID uuid.UUID, email string) Event {
	ev := Event{Type: eventType, Email: email, Timestamp: time.Now().UTC()}
	if accountID != uuid.Nil {
		ev.AccountID = accountID.String()
	}
	return ev
}

// NewGroupEvent builds a group-scoped event.
func NewGroupEvent(eventType, group string, emails []string) Event {
	return Event{Type: eventType, Group: group, Emails: emails, Timestamp: time.Now().UTC()}
}

// Notifier publishes events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close()
}

// Discard drops every event. It is used when no Pulsar URL is configured.
type Discard struct{}

func (Discard) Notify(context.Context, Event) error { return nil }
func (Discard) Close()                               {}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
	log      *zerolog.Logger
}

// NewEventPublisher initializes the Pulsar client and producer
func NewEventPublisher(pulsarURL, topic string, log *zerolog.Logger) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	log.Info().Str("topic", topic).Msg("Pulsar client and producer initialized successfully")
	return &EventPublisher{client: client, producer: producer, log: log}, nil
}

// Notify publishes an event to Pulsar, keyed by its type
func (p *EventPublisher) Notify(ctx context.Context, ev Event) error {
	message, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not serialize event payload: %w", err)
	}

	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     ev.Type,
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	p.log.Debug().RawJSON("event", message).Msg("Event sent to Pulsar")
	return nil
}

// Close closes the Pulsar client and producer
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
	p.log.Info().Msg("Pulsar client and producer closed successfully")
}
