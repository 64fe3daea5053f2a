package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/pkg/events"

	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// ErrPermanent marks a handler failure that retrying cannot fix. Such
// messages are terminated instead of redelivered.
var ErrPermanent = errors.New("permanent event failure")

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	client *Client
	logger logger.ILogger
}

func NewSubscriber(client *Client, log logger.ILogger) *Subscriber {
	return &Subscriber{client: client, logger: log}
}

// Subscribe registers handler on a durable consumer filtered to subjects.
// The returned stop func ends delivery.
func (s *Subscriber) Subscribe(ctx context.Context, durableName string, subjects []string, handler EventHandler) (func(), error) {
	consumer, err := s.client.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:        durableName,
		FilterSubjects: subjects,
		AckPolicy:      jetstream.AckExplicitPolicy,
		MaxDeliver:     5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		eventType := strings.TrimPrefix(msg.Subject(), SubjectPrefix)
		event, err := events.Unmarshal(msg.Data(), eventType)
		if err != nil {
			s.logger.Warn("NATS", "Dropping undecodable event", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err,
			})
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			details := map[string]interface{}{"subject": msg.Subject(), "error": err}
			if errors.Is(err, ErrPermanent) {
				s.logger.Warn("NATS", "Event rejected", details)
				_ = msg.Term()
				return
			}
			s.logger.Error("NATS", "Event handler failed, will retry", details)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	s.logger.Info("NATS", "Subscribed", map[string]interface{}{
		"subjects": subjects,
		"durable":  durableName,
	})
	return consumeCtx.Stop, nil
}
