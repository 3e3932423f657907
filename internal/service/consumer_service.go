package service

import (
	"context"
	"encoding/json"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// FeedInvalidator drops a user's cached calendar feed.
type FeedInvalidator interface {
	InvalidateFeed(userId uuid.UUID)
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	invalidator FeedInvalidator
	logger      logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, topicName string, invalidator FeedInvalidator, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		invalidator: invalidator,
		logger:      log,
	}
}

// Consume subscribes and processes messages in the background until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload feedInvalidation
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserID == uuid.Nil {
		// Ack so a malformed message is not redelivered forever.
		cs.logger.Warn("FEED_CONSUMER", "Dropping malformed invalidation", map[string]interface{}{"message_id": msg.UUID})
		msg.Ack()
		return
	}

	cs.invalidator.InvalidateFeed(payload.UserID)
	cs.logger.Debug("FEED_CONSUMER", "Feed invalidated", map[string]interface{}{"user_id": payload.UserID.String()})
	msg.Ack()
}
