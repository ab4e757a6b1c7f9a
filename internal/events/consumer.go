package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
)

// JoinHandler processes one join request. retry reports whether a failed
// request may succeed on redelivery.
type JoinHandler func(ctx context.Context, req models.JoinRequest) (retry bool, err error)

// JoinConsumer reads join requests from a Pulsar topic. Requests that keep
// failing are moved to the topic's dead letter queue.
type JoinConsumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
	log      *zerolog.Logger
}

// NewJoinConsumer connects to Pulsar and subscribes to topic.
func NewJoinConsumer(pulsarURL, topic, subscription string, log *zerolog.Logger) (*JoinConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.Shared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   3,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	return &JoinConsumer{client: client, consumer: consumer, log: log}, nil
}

// Run receives and handles messages until ctx is cancelled.
func (c *JoinConsumer) Run(ctx context.Context, handle JoinHandler) error {
	for {
		c.log.Debug().Msg("Waiting for messages...")
		msg, err := c.consumer.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("Error receiving message")
			continue
		}

		if dispatch(ctx, msg.Payload(), handle, c.log) {
			if err := c.consumer.Ack(msg); err != nil {
				c.log.Error().Err(err).Msg("Failed to acknowledge message")
			}
		} else {
			c.consumer.Nack(msg)
		}
	}
}

// Close cleans up the Pulsar consumer and client.
func (c *JoinConsumer) Close() {
	c.consumer.Close()
	c.client.Close()
}

// dispatch decodes and handles one payload and reports whether the message
// should be acknowledged.
func dispatch(ctx context.Context, payload []byte, handle JoinHandler, log *zerolog.Logger) bool {
	req, err := DecodeJoinRequest(payload)
	if err != nil {
		log.Error().Err(err).Str("payload", string(payload)).Msg("Dropping join request")
		return true
	}

	logger := log.With().Str("group", req.Name).Str("email", req.Email).Logger()
	retry, err := handle(ctx, req)
	switch {
	case err == nil:
		logger.Info().Msg("Join request processed")
		return true
	case retry:
		logger.Error().Err(err).Msg("Join request failed, will be redelivered")
		return false
	default:
		logger.Warn().Err(err).Msg("Join request rejected")
		return true
	}
}

var errIncompleteJoin = errors.New("join request is missing a group name or email")

// DecodeJoinRequest parses a join request payload.
func DecodeJoinRequest(payload []byte) (models.JoinRequest, error) {
	var req models.JoinRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("error unmarshaling join request: %w", err)
	}
	if req.Name == "" || req.Email == "" {
		return req, errIncompleteJoin
	}
	return req, nil
}
