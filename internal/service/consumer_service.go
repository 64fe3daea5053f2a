package service

import (
	"context"
	"time"

	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships a local event to the shared bus (NATS in production).
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event, msgID string) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	usageLogger logger.ILogger
	logger      logger.ILogger
	forwarder   EventForwarder // nil when NATS is unavailable
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	usageLogger logger.ILogger,
	logger logger.ILogger,
	forwarder EventForwarder,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		usageLogger: usageLogger,
		logger:      logger,
		forwarder:   forwarder,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: exchange events are a log, not a work queue,
// and a broken forwarder must not stall the local bus.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload, msg.Metadata.Get("event_type"))
	if err != nil {
		cs.logger.Warn("EVENTS", "Dropping malformed conversation event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		return
	}

	cs.usageLogger.Info("EXCHANGE", event.EventType(), event.Payload())

	if cs.forwarder == nil {
		return
	}

	forwardCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cs.forwarder.Publish(forwardCtx, event, msg.UUID); err != nil {
		cs.logger.Warn("EVENTS", "Failed to forward event to NATS", map[string]interface{}{
			"event_type": event.EventType(),
			"message_id": msg.UUID,
			"error":      err,
		})
	}
}
