// Package events carries domain events between the quiz engine and its
// consumers over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"
)

// TopicSessionFinished receives a SessionFinishedEvent per finished session.
const TopicSessionFinished = "session.finished"

const (
	eventTypeKey     = "event_type"
	handlerAttempts  = 3
	handlerRetryWait = 200 * time.Millisecond
)

// NewBus creates the in-process pub/sub shared by publisher and consumers.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		NewZapLoggerAdapter(logger.Get()),
	)
}

// SessionEventPublisher implements domain.EventPublisher.
type SessionEventPublisher struct {
	publisher message.Publisher
}

// NewSessionEventPublisher publishes through p.
func NewSessionEventPublisher(p message.Publisher) *SessionEventPublisher {
	return &SessionEventPublisher{publisher: p}
}

func (p *SessionEventPublisher) PublishSessionFinished(ctx context.Context, event domain.SessionFinishedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session finished event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(eventTypeKey, TopicSessionFinished)
	msg.Metadata.Set("session_id", event.SessionID)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(TopicSessionFinished, msg); err != nil {
		return fmt.Errorf("failed to publish session finished event: %w", err)
	}

	logger.Get().Debug("Published session finished event",
		zap.String("message_id", msg.UUID),
		zap.String("session_id", event.SessionID),
		zap.Int("score", event.Score))
	return nil
}

// SessionFinishedHandler handles one finished session.
type SessionFinishedHandler func(ctx context.Context, event domain.SessionFinishedEvent) error

// ConsumeSessionFinished subscribes to TopicSessionFinished and calls handle
// for every message until ctx is cancelled or the subscriber closes. A failing
// handler is retried a few times before the message is dropped.
func ConsumeSessionFinished(ctx context.Context, sub message.Subscriber, handle SessionFinishedHandler) error {
	messages, err := sub.Subscribe(ctx, TopicSessionFinished)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicSessionFinished, err)
	}

	go func() {
		for msg := range messages {
			process(ctx, msg, handle)
		}
	}()
	return nil
}

func process(ctx context.Context, msg *message.Message, handle SessionFinishedHandler) {
	log := logger.Get().With(zap.String("message_id", msg.UUID))

	var event domain.SessionFinishedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error("Dropping malformed session finished event", zap.Error(err))
		msg.Ack()
		return
	}

	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		err := handle(ctx, event)
		if err == nil {
			msg.Ack()
			return
		}
		log.Warn("Session finished handler failed",
			zap.String("session_id", event.SessionID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			msg.Nack()
			return
		case <-time.After(handlerRetryWait * time.Duration(attempt)):
		}
	}

	log.Error("Giving up on session finished event", zap.String("session_id", event.SessionID))
	msg.Ack()
}
